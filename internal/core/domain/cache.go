package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// CacheEntry is a payload stored under a key together with the
// fingerprint of the inputs that produced it.
type CacheEntry struct {
	// Key identifies the cache slot, e.g. "extraction/<path>".
	Key string `json:"key"`

	// Fingerprint is the hex digest of the input bytes.
	// An entry is valid only while this matches the current input.
	Fingerprint string `json:"fingerprint"`

	// Payload is the cached extracted text or serialised index.
	Payload []byte `json:"payload"`

	// CreatedAt is advisory and never used for validity.
	CreatedAt time.Time `json:"created_at"`

	// Meta holds advisory attributes such as source size and mtime.
	Meta map[string]string `json:"meta,omitempty"`
}

// Fingerprint returns the hex SHA-256 digest of b.
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// FingerprintStrings hashes parts in order. Each part is prefixed with its
// byte length so moving text across a part boundary changes the digest.
func FingerprintStrings(parts []string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p)) + ":"))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
