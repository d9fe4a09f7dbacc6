// Package cache stores serialized analysis reports so repeated runs
// over unchanged transcripts skip the analysis entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the storage interface shared by the memory, disk, and
// layered implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the analysis inputs. Everything that
// changes the result must go in: the transcript text, the language, and
// the framebook content hash.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "glosa:v1:" + hex.EncodeToString(hash[:])
}
