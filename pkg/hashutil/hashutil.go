package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// FingerprintLength is the number of hex characters kept for cache keys.
const FingerprintLength = 12

// Fingerprint returns the first FingerprintLength hex characters of the
// BLAKE3 digest of data. Used as a short, deterministic cache key.
func Fingerprint(data []byte) string {
	return Sum(data)[:FingerprintLength]
}

// FingerprintString is Fingerprint for string input.
func FingerprintString(s string) string {
	return Fingerprint([]byte(s))
}

// Sum returns the full BLAKE3-256 digest of data as hex.
func Sum(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
