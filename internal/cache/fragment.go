package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rohmanhakim/lazyload/internal/cache/store"
	"github.com/rohmanhakim/lazyload/internal/metadata"
)

/*
Responsibilities
- Load one owner's table at most once per Process call
- Answer lookups against the current config fingerprint and engine version
- Persist the table once, only if it changed
- Drop tables when content changes or the engine is deactivated

Stale entries are overwritten on the next Record, never deleted eagerly.
Persistence failures are recorded and swallowed: the caller renders
uncached instead.
*/

const KeyPrefix = "lazyload:fragments:"

func Key(ownerID string) string {
	return KeyPrefix + ownerID
}

type FragmentCache struct {
	store        store.Store
	metadataSink metadata.MetadataSink
}

func NewFragmentCache(s store.Store, metadataSink metadata.MetadataSink) *FragmentCache {
	return &FragmentCache{
		store:        s,
		metadataSink: metadataSink,
	}
}

// Load returns the persisted table for ownerID, or an empty one when the
// owner is absent, nothing was stored, or the stored bytes are unusable.
func (c *FragmentCache) Load(ctx context.Context, ownerID string) *Table {
	table := NewTable(ownerID)
	if ownerID == "" {
		return table
	}

	data, ok, err := c.store.Get(ctx, Key(ownerID))
	if err != nil {
		c.recordError("FragmentCache.Load", ownerID, &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseLoadFailure,
		})
		return table
	}
	if !ok {
		return table
	}
	if err := json.Unmarshal(data, table); err != nil {
		c.recordError("FragmentCache.Load", ownerID, &CacheError{
			Message: err.Error(),
			Cause:   ErrCauseCorruptTable,
		})
		return NewTable(ownerID)
	}

	c.metadataSink.RecordCache(ownerID, metadata.CacheLoad, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrStoreKey, Key(ownerID)),
	})
	return table
}

func (c *FragmentCache) Lookup(table *Table, tagFingerprint, configFingerprint, engineVersion string) Result {
	s, ok := table.slots[tagFingerprint]
	attrs := []metadata.Attribute{metadata.NewAttr(metadata.AttrFingerprint, tagFingerprint)}
	switch {
	case !ok:
		c.metadataSink.RecordCache(table.owner, metadata.CacheMiss, attrs)
		return Result{Kind: Miss}
	case s.entry.ConfigFingerprint != configFingerprint || s.entry.EngineVersion != engineVersion:
		c.metadataSink.RecordCache(table.owner, metadata.CacheStale, attrs)
		return Result{Kind: Miss, Stale: true}
	case s.tombstone:
		c.metadataSink.RecordCache(table.owner, metadata.CacheTombstone, attrs)
		return Result{Kind: Tombstone}
	default:
		c.metadataSink.RecordCache(table.owner, metadata.CacheHit, attrs)
		return Result{Kind: Hit, HTML: s.entry.HTML}
	}
}

func (c *FragmentCache) Record(table *Table, tagFingerprint, html, configFingerprint, engineVersion string) {
	table.slots[tagFingerprint] = slot{entry: Entry{
		HTML:              html,
		ConfigFingerprint: configFingerprint,
		EngineVersion:     engineVersion,
	}}
	table.dirty = true
}

// RecordTombstone marks the tag as not rewritable under configFingerprint
// and engineVersion.
func (c *FragmentCache) RecordTombstone(table *Table, tagFingerprint, configFingerprint, engineVersion string) {
	stamp := Entry{ConfigFingerprint: configFingerprint, EngineVersion: engineVersion}
	if s, ok := table.slots[tagFingerprint]; ok && s.tombstone && s.entry == stamp {
		return
	}
	table.slots[tagFingerprint] = slot{tombstone: true, entry: stamp}
	table.dirty = true
}

// Flush persists table under its owner if it was mutated. Last write wins
// across concurrent flushes for the same owner.
func (c *FragmentCache) Flush(ctx context.Context, table *Table) {
	if table == nil || table.owner == "" || !table.dirty {
		return
	}

	data, err := json.Marshal(table)
	if err != nil {
		c.recordError("FragmentCache.Flush", table.owner, &CacheError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailure,
		})
		return
	}
	if err := c.store.Set(ctx, Key(table.owner), data); err != nil {
		c.recordError("FragmentCache.Flush", table.owner, &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCausePersistFailure,
		})
		return
	}
	table.dirty = false

	c.metadataSink.RecordCache(table.owner, metadata.CacheFlush, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrStoreKey, Key(table.owner)),
	})
}

// Invalidate deletes the owner's table. Called whenever the owner's
// content changes.
func (c *FragmentCache) Invalidate(ctx context.Context, ownerID string) {
	if ownerID == "" {
		return
	}
	if err := c.store.Delete(ctx, Key(ownerID)); err != nil {
		c.recordError("FragmentCache.Invalidate", ownerID, &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseDeleteFailure,
		})
		return
	}
	c.metadataSink.RecordCache(ownerID, metadata.CacheInvalidate, nil)
}

// InvalidateAll deletes every owner's table.
func (c *FragmentCache) InvalidateAll(ctx context.Context) {
	if err := c.store.DeletePrefix(ctx, KeyPrefix); err != nil {
		c.recordError("FragmentCache.InvalidateAll", "", &CacheError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseDeleteFailure,
		})
		return
	}
	c.metadataSink.RecordCache("", metadata.CacheInvalidate, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrStoreKey, KeyPrefix+"*"),
	})
}

func (c *FragmentCache) recordError(action, ownerID string, err *CacheError) {
	c.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		mapCacheErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrOwner, ownerID),
		},
	)
}
