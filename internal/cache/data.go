package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is one rewritten fragment together with the configuration and
// engine it was produced under.
type Entry struct {
	HTML              string `json:"cacheHtml"`
	ConfigFingerprint string `json:"configFingerprint"`
	EngineVersion     string `json:"engineVersion"`
}

// slot holds an entry or a tombstone. A tombstone keeps the configuration
// and engine it was written under in entry, with HTML left empty.
type slot struct {
	tombstone bool
	entry     Entry
}

type tombstoneDTO struct {
	Tombstone         bool   `json:"tombstone"`
	ConfigFingerprint string `json:"configFingerprint"`
	EngineVersion     string `json:"engineVersion"`
}

// Table maps tag fingerprints to entries or tombstones for one owner.
// It is scoped to a single Process call and is not safe for concurrent use.
type Table struct {
	owner string
	slots map[string]slot
	dirty bool
}

func NewTable(owner string) *Table {
	return &Table{
		owner: owner,
		slots: make(map[string]slot),
	}
}

func (t *Table) Owner() string {
	return t.owner
}

// Dirty reports whether the table changed since it was loaded.
func (t *Table) Dirty() bool {
	return t.dirty
}

func (t *Table) Len() int {
	return len(t.slots)
}

// MarshalJSON writes entries and tombstones as objects, with keys in sorted
// order.
func (t *Table) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(t.slots))
	for k := range t.slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		s := t.slots[k]
		var value []byte
		if s.tombstone {
			value, err = json.Marshal(tombstoneDTO{
				Tombstone:         true,
				ConfigFingerprint: s.entry.ConfigFingerprint,
				EngineVersion:     s.entry.EngineVersion,
			})
		} else {
			value, err = json.Marshal(s.entry)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *Table) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	slots := make(map[string]slot, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		// bare false carries no configuration and never matches one
		if bytes.Equal(v, []byte("false")) {
			slots[k] = slot{tombstone: true}
			continue
		}
		var dto struct {
			Entry
			Tombstone bool `json:"tombstone"`
		}
		if err := json.Unmarshal(v, &dto); err != nil {
			return fmt.Errorf("entry %s: %w", k, err)
		}
		if dto.Tombstone {
			dto.Entry.HTML = ""
		}
		slots[k] = slot{tombstone: dto.Tombstone, entry: dto.Entry}
	}
	t.slots = slots
	return nil
}

type ResultKind int

const (
	Miss ResultKind = iota
	Hit
	Tombstone
)

func (k ResultKind) String() string {
	switch k {
	case Hit:
		return "hit"
	case Tombstone:
		return "tombstone"
	default:
		return "miss"
	}
}

type Result struct {
	Kind ResultKind
	// HTML is set only for Hit.
	HTML string
	// Stale marks a Miss caused by an entry or tombstone from another
	// configuration or engine version.
	Stale bool
}
