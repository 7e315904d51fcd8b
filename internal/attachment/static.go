package attachment

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Static is a map-backed Resolver. It is read-only after construction and
// safe for concurrent use.
type Static struct {
	featured map[string]int
	lqip     map[int]Asset
}

func NewStatic(featured map[string]int, lqip map[int]Asset) *Static {
	if featured == nil {
		featured = map[string]int{}
	}
	if lqip == nil {
		lqip = map[int]Asset{}
	}
	return &Static{featured: featured, lqip: lqip}
}

func (s *Static) ResolveAttachmentID(class string, ownerID string) (int, bool) {
	if id, ok := ClassAttachmentID(class); ok {
		return id, true
	}
	if ownerID != "" && IsFeatured(class) {
		id, ok := s.featured[ownerID]
		return id, ok && id > 0
	}
	return 0, false
}

func (s *Static) ResolveLQIP(id int) (Asset, bool) {
	asset, ok := s.lqip[id]
	if !ok || asset.URL == "" {
		return Asset{}, false
	}
	return asset, true
}

type manifestDTO struct {
	// owner id -> featured attachment id
	Featured map[string]int `json:"featured"`
	// attachment id -> LQIP rendition
	LQIP map[string]Asset `json:"lqip"`
}

// LoadManifest reads a JSON manifest of the form
//
//	{"featured": {"42": 7}, "lqip": {"7": {"url": "https://.../a-33x20.jpg"}}}
func LoadManifest(path string) (*Static, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReadManifestFail, err.Error())
	}
	var dto manifestDTO
	if err := json.Unmarshal(content, &dto); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrManifestParsingFail, err.Error())
	}

	lqip := make(map[int]Asset, len(dto.LQIP))
	for key, asset := range dto.LQIP {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: attachment id %q", ErrManifestParsingFail, key)
		}
		lqip[id] = asset
	}
	return NewStatic(dto.Featured, lqip), nil
}
