package lazyload

import (
	"strings"

	"github.com/rohmanhakim/lazyload/internal/markup"
	"golang.org/x/net/html/atom"
)

// Kind names the element a transformer handles.
type Kind string

const (
	KindImage  Kind = "img"
	KindIframe Kind = "iframe"
)

// Environment describes the host page. It is not part of the config
// fingerprint: hosts are expected to keep it stable per owner.
type Environment struct {
	// Host ships a stylesheet that already sizes embed blocks.
	BlockLibraryStyled bool
	// Theme declares responsive-embed support.
	ResponsiveEmbeds bool
	// Preview renders are never read from or written to the cache.
	Preview bool
}

// names derives every class and attribute name the browser runtime reads.
// The runtime matches these literally.
type names struct {
	prefix string
}

func (n names) deferred(attr string) string {
	return "data-" + n.prefix + "-" + attr
}

func (n names) class(suffix string) string {
	return n.prefix + "-" + suffix
}

func (n names) itemClasses() string {
	return n.class("lazyitem") + " " + n.class("not-lazyloaded")
}

func (n names) containerClasses(kind Kind) string {
	if kind == KindIframe {
		return n.class("lazy-iframe") + " " + n.class("not-lazyloaded")
	}
	return n.class("lazy-image") + " " + n.class("not-lazyloaded")
}

// opaque marks subtrees the scanners must not enter: containers this
// engine emitted and <noscript> blocks, whose content never lazy-loads.
func (n names) opaque() func(atom.Atom, markup.Attributes) bool {
	image := n.class("lazy-image")
	iframe := n.class("lazy-iframe")
	return func(name atom.Atom, attrs markup.Attributes) bool {
		switch name {
		case atom.Noscript:
			return true
		case atom.Div:
			for _, token := range strings.Fields(attrs.Value("class")) {
				if token == image || token == iframe {
					return true
				}
			}
		}
		return false
	}
}
