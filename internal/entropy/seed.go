// Package entropy supplies seeds for jobs that do not fix one.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"log/slog"
	"time"
)

// Seed returns a non-zero seed drawn from crypto/rand.
func Seed() int64 {
	return seedFrom(rand.Reader)
}

// SeedOr returns seed unless it is zero, in which case it draws a fresh one.
func SeedOr(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return Seed()
}

func seedFrom(r io.Reader) int64 {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		// Should never happen with crypto/rand; fall back to the clock.
		slog.Warn("entropy read failed, seeding from clock", "error", err)
		return nonZero(time.Now().UnixNano())
	}
	return nonZero(int64(binary.LittleEndian.Uint64(buf[:]) >> 1))
}

func nonZero(v int64) int64 {
	if v == 0 {
		return 1
	}
	return v
}
