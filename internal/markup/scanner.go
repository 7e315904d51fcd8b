package markup

import (
	"strings"

	"golang.org/x/net/html/atom"
)

/*
Scanner locates elements of one tag name in raw markup without building a
DOM. It understands just enough HTML to be safe on real content:

  - quoted attribute values may contain '>'
  - tag names match case-insensitively and must end at whitespace, '/' or '>'
  - comments are skipped
  - elements the caller marks opaque are skipped together with everything
    up to their matching end tag, counting nested elements of the same name

Void targets (img) match "<img ...>" and "<img .../>", plus a directly
following "</img>" when present. Other targets match "<name ...>" up to the
first "</name>"; nested elements of the target name are not balanced.
*/
type Scanner struct {
	name   atom.Atom
	opaque func(name atom.Atom, attrs Attributes) bool
}

// NewScanner builds a scanner for name. opaque may be nil.
func NewScanner(name atom.Atom, opaque func(name atom.Atom, attrs Attributes) bool) Scanner {
	return Scanner{name: name, opaque: opaque}
}

// Scan returns every match in document order. Matches never overlap.
func Scan(content string, name atom.Atom) []Tag {
	return NewScanner(name, nil).Scan(content)
}

// Rewrite replaces every match of name with fn(tag).
func Rewrite(content string, name atom.Atom, fn func(Tag) string) string {
	return NewScanner(name, nil).Rewrite(content, fn)
}

func (s Scanner) Scan(content string) []Tag {
	var tags []Tag
	s.walk(content, func(t Tag) {
		tags = append(tags, t)
	})
	return tags
}

func (s Scanner) Rewrite(content string, fn func(Tag) string) string {
	var b strings.Builder
	last := 0
	s.walk(content, func(t Tag) {
		if last == 0 {
			b.Grow(len(content))
		}
		b.WriteString(content[last:t.Start])
		b.WriteString(fn(t))
		last = t.End
	})
	if last == 0 {
		return content
	}
	b.WriteString(content[last:])
	return b.String()
}

func (s Scanner) walk(content string, emit func(Tag)) {
	lower := lowerASCII(content)
	target := s.name.String()
	i := 0

	for i < len(content) {
		lt := strings.IndexByte(content[i:], '<')
		if lt < 0 {
			return
		}
		lt += i

		if strings.HasPrefix(content[lt:], "<!--") {
			end := strings.Index(content[lt+4:], "-->")
			if end < 0 {
				return
			}
			i = lt + 4 + end + 3
			continue
		}

		tok, ok := readStartTag(content, lower, lt)
		if !ok {
			i = lt + 1
			continue
		}

		switch {
		case tok.name == s.name:
			tag := Tag{
				Start:    lt,
				Name:     target,
				AttrText: content[tok.attrStart:tok.gt],
			}
			end := tok.gt + 1
			if isVoid(s.name) {
				if close, closeEnd := findEndTag(lower, end, target, true); close >= 0 {
					tag.Inner = content[end:close]
					end = closeEnd
				}
			} else {
				close, closeEnd := findEndTag(lower, end, target, false)
				if close < 0 {
					i = end
					continue
				}
				tag.Inner = content[end:close]
				end = closeEnd
			}
			tag.End = end
			tag.Raw = content[tag.Start:tag.End]
			emit(tag)
			i = end

		case s.opaque != nil && !tok.selfClosing && !isVoid(tok.name):
			attrs, _ := ParseAttributes(content[tok.attrStart:tok.gt])
			if s.opaque(tok.name, attrs) {
				if end := skipElement(content, lower, tok.gt+1, tok.name.String()); end >= 0 {
					i = end
					continue
				}
			}
			i = tok.gt + 1

		default:
			i = tok.gt + 1
		}
	}
}

type startTag struct {
	name        atom.Atom
	attrStart   int
	gt          int
	selfClosing bool
}

// readStartTag reads the start tag opening at lt. End tags, declarations
// and unknown element names report ok=false.
func readStartTag(content, lower string, lt int) (startTag, bool) {
	j := lt + 1
	for j < len(lower) && isNameChar(lower[j]) {
		j++
	}
	if j == lt+1 || j >= len(lower) {
		return startTag{}, false
	}
	if c := lower[j]; !isSpace(c) && c != '/' && c != '>' {
		return startTag{}, false
	}

	name := atom.Lookup([]byte(lower[lt+1 : j]))
	if name == 0 {
		return startTag{}, false
	}

	gt := startTagEnd(content, j)
	if gt < 0 {
		return startTag{}, false
	}
	return startTag{
		name:        name,
		attrStart:   j,
		gt:          gt,
		selfClosing: gt > j && content[gt-1] == '/',
	}, true
}

// startTagEnd returns the index of the '>' closing a start tag whose
// attribute text begins at i. Quotes are honoured only where a value may
// start; an unterminated quote falls back to the first '>'.
func startTagEnd(s string, i int) int {
	var quote byte
	afterEq := false
	for k := i; k < len(s); k++ {
		c := s[k]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '>':
			return k
		case c == '=':
			afterEq = true
		case afterEq && (c == '"' || c == '\''):
			quote = c
			afterEq = false
		case isSpace(c):
		default:
			afterEq = false
		}
	}
	if gt := strings.IndexByte(s[i:], '>'); gt >= 0 {
		return i + gt
	}
	return -1
}

// findEndTag finds "</name>" at or after from. With adjacent set only
// whitespace may precede it. It returns the offset of '<' and the offset
// just past '>'.
func findEndTag(lower string, from int, name string, adjacent bool) (int, int) {
	needle := "</" + name
	k := from
	for {
		var idx int
		if adjacent {
			for k < len(lower) && isSpace(lower[k]) {
				k++
			}
			if !strings.HasPrefix(lower[k:], needle) {
				return -1, -1
			}
			idx = k
		} else {
			rel := strings.Index(lower[k:], needle)
			if rel < 0 {
				return -1, -1
			}
			idx = k + rel
		}

		after := idx + len(needle)
		if after < len(lower) && (isSpace(lower[after]) || lower[after] == '>') {
			gt := strings.IndexByte(lower[after:], '>')
			if gt < 0 {
				return -1, -1
			}
			return idx, after + gt + 1
		}
		if adjacent {
			return -1, -1
		}
		k = after
	}
}

// skipElement returns the offset just past the end tag balancing an
// already-opened element of name, or -1 when it is never closed.
func skipElement(content, lower string, from int, name string) int {
	depth := 1
	i := from
	for i < len(lower) {
		lt := strings.IndexByte(lower[i:], '<')
		if lt < 0 {
			return -1
		}
		lt += i

		if strings.HasPrefix(lower[lt:], "<!--") {
			end := strings.Index(lower[lt+4:], "-->")
			if end < 0 {
				return -1
			}
			i = lt + 4 + end + 3
			continue
		}

		if strings.HasPrefix(lower[lt:], "</"+name) {
			after := lt + 2 + len(name)
			if after < len(lower) && (isSpace(lower[after]) || lower[after] == '>') {
				gt := strings.IndexByte(lower[after:], '>')
				if gt < 0 {
					return -1
				}
				depth--
				if depth == 0 {
					return after + gt + 1
				}
				i = after + gt + 1
				continue
			}
		}

		if tok, ok := readStartTag(content, lower, lt); ok {
			if tok.name.String() == name && !tok.selfClosing {
				depth++
			}
			i = tok.gt + 1
			continue
		}
		i = lt + 1
	}
	return -1
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == ':'
}

func isVoid(name atom.Atom) bool {
	switch name {
	case atom.Img, atom.Br, atom.Hr, atom.Input, atom.Meta, atom.Link,
		atom.Source, atom.Embed, atom.Area, atom.Base, atom.Col, atom.Track, atom.Wbr:
		return true
	}
	return false
}
