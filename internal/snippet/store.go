package snippet

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	KeyCSS = "lazyload_dynamic_css"
	KeyJS  = "lazyload_dynamic_js"
)

// Entry pairs a snippet with the configuration it was rendered from, so a
// configuration change reads as a miss without an explicit delete.
type Entry struct {
	ConfigFingerprint string
	Text              string
}

// Store is the short-lived cache for the two global snippets.
type Store interface {
	Get(key string) (Entry, bool)
	Set(key string, value Entry)
	Delete(key string)
}

// LRUStore keeps snippets in an expiring LRU. A zero ttl keeps entries
// until they are deleted or evicted.
type LRUStore struct {
	lru *expirable.LRU[string, Entry]
}

func NewLRUStore(ttl time.Duration) *LRUStore {
	return &LRUStore{
		lru: expirable.NewLRU[string, Entry](8, nil, ttl),
	}
}

func (s *LRUStore) Get(key string) (Entry, bool) {
	return s.lru.Get(key)
}

func (s *LRUStore) Set(key string, value Entry) {
	s.lru.Add(key, value)
}

func (s *LRUStore) Delete(key string) {
	s.lru.Remove(key)
}

func (s *LRUStore) Len() int {
	return s.lru.Len()
}
