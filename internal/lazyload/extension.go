package lazyload

import "github.com/rohmanhakim/lazyload/internal/markup"

// Extension lets a host customize the rewrite at four points of the
// pipeline. Extensions are not part of the config fingerprint; a host that
// changes its extension's behavior must invalidate cached fragments itself.
type Extension interface {
	// AllowMatch runs before the cache is consulted. Returning false leaves
	// the tag untouched and unrecorded.
	AllowMatch(kind Kind, raw string) bool
	// FilterAttributes runs right after the attribute text is parsed.
	FilterAttributes(kind Kind, attrs markup.Attributes) markup.Attributes
	// FilterStyle runs before the container style is serialized.
	FilterStyle(kind Kind, style Style) Style
	// FilterOutput receives the final replacement markup.
	FilterOutput(kind Kind, html string) string
}

type NopExtension struct{}

func (NopExtension) AllowMatch(kind Kind, raw string) bool {
	return true
}

func (NopExtension) FilterAttributes(kind Kind, attrs markup.Attributes) markup.Attributes {
	return attrs
}

func (NopExtension) FilterStyle(kind Kind, style Style) Style {
	return style
}

func (NopExtension) FilterOutput(kind Kind, html string) string {
	return html
}
