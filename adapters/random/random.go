// Package random provides randomness sources for key minting.
package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// Real uses crypto/rand for secure randomness.
type Real struct{}

// Bytes generates n cryptographically secure random bytes.
func (Real) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// String generates a random hex string of n characters.
func (r Real) String(n int) (string, error) {
	// We need n/2 bytes to get n hex chars
	bytes := (n + 1) / 2
	b, err := r.Bytes(bytes)
	if err != nil {
		return "", err
	}
	s := hex.EncodeToString(b)
	if len(s) > n {
		s = s[:n]
	}
	return s, nil
}

// Fake provides deterministic randomness for testing.
type Fake struct {
	mu      sync.Mutex
	counter int
}

// NewFake creates a fake random source.
func NewFake() *Fake {
	return &Fake{}
}

// Bytes returns deterministic bytes based on an internal counter.
func (f *Fake) Bytes(n int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counter++
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(f.counter)
	}
	return b, nil
}

// String returns a deterministic hex string of n characters.
func (f *Fake) String(n int) (string, error) {
	b, err := f.Bytes((n + 1) / 2)
	if err != nil {
		return "", err
	}
	s := hex.EncodeToString(b)
	if len(s) > n {
		s = s[:n]
	}
	return s, nil
}

// KeyPrefix is prepended to every minted API key.
const KeyPrefix = "ck_"

// NewAPIKey mints a fresh API key: the prefix plus 32 hex characters.
func NewAPIKey(src interface{ String(int) (string, error) }) (string, error) {
	s, err := src.String(32)
	if err != nil {
		return "", fmt.Errorf("mint api key: %w", err)
	}
	return KeyPrefix + s, nil
}
