package utils

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA1   HashAlgorithm = "sha1"
	SHA256 HashAlgorithm = "sha256"
)

// Hasher provides hex-encoded content hashes
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Hash computes a hex hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA1:
		sum := sha1.Sum(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// EmptyContentHash is the SHA-1 of zero bytes, the well-known key for
// content that has no identity of its own
func EmptyContentHash() string {
	return NewHasher(SHA1).Hash(nil)
}
