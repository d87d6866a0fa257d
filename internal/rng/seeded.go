package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math"
)

// SeededSource generates a deterministic float stream from a server seed,
// client seed and nonce using HMAC-SHA256 in counter mode. The same
// (server, client, nonce, cursor) tuple always yields the same draws,
// which makes every game outcome reproducible for audit and testing.
type SeededSource struct {
	serverSeed   string
	clientSeed   string
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewSeededSource creates a seeded source positioned at the given cursor.
func NewSeededSource(serverSeed, clientSeed string, nonce uint64, cursor uint64) *SeededSource {
	s := &SeededSource{
		serverSeed:   serverSeed,
		clientSeed:   clientSeed,
		nonce:        nonce,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}
	s.generateRound()
	return s
}

func (s *SeededSource) next() byte {
	if s.currentPos >= 32 {
		s.currentRound++
		s.currentPos = 0
		s.generateRound()
	}
	b := s.buffer[s.currentPos]
	s.currentPos++
	return b
}

// Float consumes exactly 4 bytes of the HMAC stream and maps them to [0,1).
func (s *SeededSource) Float() float64 {
	result := 0.0
	for i := 0; i < 4; i++ {
		divider := math.Pow(256, float64(i+1))
		result += float64(s.next()) / divider
	}
	return result
}

func (s *SeededSource) generateRound() {
	h := hmac.New(sha256.New, []byte(s.serverSeed))
	message := fmt.Sprintf("%s:%d:%d", s.clientSeed, s.nonce, s.currentRound)
	h.Write([]byte(message))
	copy(s.buffer[:], h.Sum(nil))
}

// Floats generates count floats starting from the given cursor.
func Floats(serverSeed, clientSeed string, nonce uint64, cursor uint64, count int) []float64 {
	s := NewSeededSource(serverSeed, clientSeed, nonce, cursor)
	floats := make([]float64, count)
	for i := range floats {
		floats[i] = s.Float()
	}
	return floats
}
