package privacy

import (
	"crypto/sha256"
	"encoding/hex"
)

// IPHasher produces one-way salted digests of visitor IP addresses.
// The salt is a process-wide secret injected at construction; rotating it
// invalidates every stored hash, so rotation is a deliberate destructive
// operation, never automatic.
type IPHasher struct {
	salt string
}

// NewIPHasher creates a hasher bound to the given salt.
func NewIPHasher(salt string) *IPHasher {
	return &IPHasher{salt: salt}
}

// HashIP returns the hex-encoded SHA-256 digest of ip combined with the salt.
// The raw IP must never be persisted or logged; this digest is the only
// identifier the system stores for a visitor.
func (h *IPHasher) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + h.salt))
	return hex.EncodeToString(sum[:])
}
