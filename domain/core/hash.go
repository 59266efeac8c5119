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

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first n hex characters, or the whole hash when shorter
func (h Hash) Short(n int) string {
	if n <= 0 || n >= len(h) {
		return string(h)
	}
	return string(h[:n])
}

// ImageHash fingerprints an uploaded leaf image for log correlation
type ImageHash Hash

func NewImageHash(data []byte) ImageHash { return ImageHash(NewHash(data)) }

func (h ImageHash) String() string { return Hash(h).String() }

// Prefix is the 12-character form written to logs
func (h ImageHash) Prefix() string { return Hash(h).Short(12) }
