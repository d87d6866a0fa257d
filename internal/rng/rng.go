// Package rng provides the uniform random draw primitive every game
// resolver is defined in terms of. The default source reads crypto/rand;
// a seeded HMAC-SHA256 stream source exists for deterministic replay and
// simulation.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// Source yields uniform draws in [0, 1). Implementations never fail: the
// crypto-backed source panics if the OS entropy pool is unreadable, which
// is unrecoverable anyway.
type Source interface {
	Float() float64
}

// CryptoSource draws from crypto/rand. Stateless per call.
type CryptoSource struct {
	reader io.Reader
}

// NewCryptoSource returns a source backed by the OS entropy reader.
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{reader: rand.Reader}
}

// Float returns a uniform float in [0,1) with 53 bits of precision.
func (s *CryptoSource) Float() float64 {
	var buf [8]byte
	if _, err := io.ReadFull(s.reader, buf[:]); err != nil {
		panic("rng: entropy source failed: " + err.Error())
	}
	n := binary.BigEndian.Uint64(buf[:]) >> 11 // keep 53 bits
	return float64(n) / float64(1<<53)
}

// Shuffle applies a Fisher-Yates shuffle to n elements using swap,
// drawing from src. For i from n-1 down to 1, the swap partner is a
// uniform index in [0, i].
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(src.Float() * float64(i+1))
		if j > i {
			j = i
		}
		swap(i, j)
	}
}

// Intn returns a uniform integer in [0, n) drawn from src.
func Intn(src Source, n int) int {
	v := int(src.Float() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// WeightedIndex selects an index with probability proportional to its
// weight. Weights must be non-negative; an all-zero slice returns the
// last index.
func WeightedIndex(src Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := src.Float() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return len(weights) - 1
}
