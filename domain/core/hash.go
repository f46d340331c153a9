package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex digits, enough to correlate log lines
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// PayloadHash fingerprints an encoded submission body
type PayloadHash Hash

// NewPayloadHash hashes the encoded body string
func NewPayloadHash(encoded string) PayloadHash { return PayloadHash(NewHash([]byte(encoded))) }

func (h PayloadHash) String() string { return Hash(h).String() }
func (h PayloadHash) Short() string  { return Hash(h).Short() }
