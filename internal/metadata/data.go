package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to decide whether a tag is transformed, cached
	   or left untouched.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - dimension probe timeout
  - Vimeo metadata lookup failure
  - LQIP fetch for base64 inlining failed

# CauseDecodeFailure

Meaning:
  - Bytes were fetched but could not be decoded as an image.

# CauseContentInvalid

Meaning:
  - Markup could not be processed meaningfully.

Examples:
  - attribute text that does not parse
  - tag without a usable src

# CauseStorageFailure

Meaning:
  - Failure while loading, persisting or deleting cached fragments.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseDecodeFailure
	CauseContentInvalid
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseDecodeFailure:
		return "decode_failure"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// CacheEvent names a fragment cache lifecycle step.
type CacheEvent string

const (
	CacheHit        CacheEvent = "hit"
	CacheMiss       CacheEvent = "miss"
	CacheStale      CacheEvent = "stale"
	CacheTombstone  CacheEvent = "tombstone"
	CacheLoad       CacheEvent = "load"
	CacheFlush      CacheEvent = "flush"
	CacheInvalidate CacheEvent = "invalidate"
)

// TransformOutcome is the terminal state of one matched tag.
type TransformOutcome string

const (
	OutcomeTransformed TransformOutcome = "transformed"
	OutcomeCached      TransformOutcome = "cached"
	OutcomeSkipped     TransformOutcome = "skipped"
	OutcomeDegraded    TransformOutcome = "degraded"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrOwner       AttributeKey = "owner"
	AttrTag         AttributeKey = "tag"
	AttrField       AttributeKey = "field"
	AttrFingerprint AttributeKey = "fingerprint"
	AttrHTTPStatus  AttributeKey = "http_status"
	AttrMessage     AttributeKey = "message"
	AttrStoreKey    AttributeKey = "store_key"
)
