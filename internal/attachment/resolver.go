package attachment

import (
	"regexp"
	"strconv"
	"strings"
)

var imageClassPattern = regexp.MustCompile(`(?i)wp-image-(\d+)`)

const featuredClass = "wp-post-image"

// Asset is a registered rendition of an attachment.
type Asset struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Resolver answers the two questions the image path asks the host: which
// attachment an <img> shows, and where its LQIP rendition lives.
type Resolver interface {
	ResolveAttachmentID(class string, ownerID string) (int, bool)
	ResolveLQIP(id int) (Asset, bool)
}

// ClassAttachmentID extracts the id from a "wp-image-<id>" class token.
func ClassAttachmentID(class string) (int, bool) {
	m := imageClassPattern.FindStringSubmatch(class)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// IsFeatured reports whether class marks the owner's featured image.
func IsFeatured(class string) bool {
	return strings.Contains(strings.ToLower(class), featuredClass)
}

// None resolves nothing. Used when the host has no attachment metadata.
type None struct{}

func (None) ResolveAttachmentID(class string, ownerID string) (int, bool) {
	return 0, false
}

func (None) ResolveLQIP(id int) (Asset, bool) {
	return Asset{}, false
}
