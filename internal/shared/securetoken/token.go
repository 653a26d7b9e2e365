// Package securetoken generates opaque random tokens and their storage hashes.
package securetoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DefaultBytes yields 64 hex characters.
const DefaultBytes = 32

// Generate returns byteLength random bytes, hex encoded.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the SHA-256 of value in hex. Only hashes are persisted.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
