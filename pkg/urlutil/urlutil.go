package urlutil

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Resolve turns a possibly relative or protocol-relative reference into an
// absolute URL using base. When base is nil the reference must already be
// absolute (a scheme-less "//host/path" reference is given https).
//
// Properties:
//   - Pure: no state, no network
//   - Deterministic: same input always produces same output
func Resolve(raw string, base *url.URL) (url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return url.URL{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if ref.IsAbs() {
		return *ref, nil
	}
	if base != nil && base.IsAbs() {
		return *base.ResolveReference(ref), nil
	}
	if ref.Host != "" {
		resolved := *ref
		resolved.Scheme = "https"
		return resolved, nil
	}
	return url.URL{}, fmt.Errorf("relative reference %q without base URL", raw)
}

// Extension returns the lowercased file extension of the URL path, without
// the leading dot, ignoring query and fragment. Data URIs and unparseable
// input yield "".
func Extension(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "data" {
		return ""
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return ""
	}
	return lowerASCII(strings.TrimPrefix(ext, "."))
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}

	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
