// Package daily derives the shared seed of the daily challenge, so every
// player generates the same racks on a given UTC day.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns HMAC-SHA256(salt, YYYY-MM-DD) folded into an int64.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes; the sign bit is cleared so the seed is never negative
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// Source returns a deterministic random source for the day. It satisfies
// tiles.Source and is not safe for concurrent use.
func Source(date time.Time, salt string) *rand.Rand {
	return rand.New(rand.NewSource(Seed(date, salt)))
}
