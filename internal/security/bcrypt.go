// internal/security/bcrypt.go
package security

import (
	"golang.org/x/crypto/bcrypt"
)

// PinHasher hashes transfer PINs and compares presented PINs against a
// stored hash. The comparison must be constant-time.
type PinHasher interface {
	Hash(pin string) (string, error)
	Compare(hash, pin string) error
}

// BcryptHasher implements PIN hashing via bcrypt. Only the hash is ever
// stored; comparison happens inside bcrypt in constant time.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-based hasher with default fallback cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, pin string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
}
