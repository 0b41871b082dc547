// Package cache stores parsed provider responses so identical requests inside a
// TTL window are served without another provider call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store is a key/value response cache. Values are JSON payloads.
type Store interface {
	// Get returns the value for key. A missing or expired entry is a miss (ok=false, err=nil).
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// Entry is a cached value with its insertion time.
type Entry struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
}

const digestLen = 16

// Key derives a cache key from a capability name and its salient inputs.
//
// Each part contributes a prefix of at most prefixRunes runes for readability, and the
// key ends with a digest over the full untruncated parts so long inputs sharing a
// prefix never collide.
func Key(capability string, prefixRunes int, parts ...string) string {
	h := sha256.New()
	var b strings.Builder
	b.WriteString(capability)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(truncateRunes(p, prefixRunes))

		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	b.WriteByte(':')
	b.WriteString(hex.EncodeToString(h.Sum(nil))[:digestLen])
	return b.String()
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
