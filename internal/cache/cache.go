// Package cache stores raw model responses so repeated runs against the
// same prompts do not re-spend API quota. It is an optimization only;
// results are never persisted here.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for response caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ResponseKey generates a cache key for a prompt sent to a given model.
// Temperature is deliberately excluded: a cached answer for the same
// prompt/model pair is close enough for position tracking.
func ResponseKey(chatModel, promptText string) string {
	hash := sha256.Sum256([]byte(chatModel + "\x00" + promptText))
	return "visibility:v1:" + hex.EncodeToString(hash[:])
}
