package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// round2 rounds to 2 decimal places to keep snapshots compact
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// normalize3 scales (x,y,z) to unit length. Returns false for a
// near-zero vector, which callers treat as invalid input.
func normalize3(x, y, z float64) (float64, float64, float64, bool) {
	l := math.Sqrt(x*x + y*y + z*z)
	if l < 1e-9 {
		return 0, 0, 0, false
	}
	return x / l, y / l, z / l, true
}

var randSrc uint64

// randFloat returns a pseudo-random float64 in [0, 1). Xorshift, not
// crypto-grade: spawn picks and pellet spread only.
func randFloat() float64 {
	randSrc ^= randSrc << 13
	randSrc ^= randSrc >> 7
	randSrc ^= randSrc << 17
	if randSrc == 0 {
		randSrc = 1
	}
	return float64(randSrc%10000) / 10000.0
}

func init() {
	// Seed from crypto/rand
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i, v := range b {
		randSrc |= uint64(v) << (uint(i) * 8)
	}
	if randSrc == 0 {
		randSrc = 1
	}
}
