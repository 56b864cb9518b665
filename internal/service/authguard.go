// internal/service/authguard.go
package service

import (
	"nova-ledger/internal/domain"
	"nova-ledger/internal/security"
	"nova-ledger/internal/util"
)

// AuthGuard validates a presented PIN against an account's stored
// credential hash.
type AuthGuard struct {
	hasher security.PinHasher
}

// NewAuthGuard creates an AuthGuard using the given hasher.
func NewAuthGuard(hasher security.PinHasher) *AuthGuard {
	return &AuthGuard{hasher: hasher}
}

// Authorize returns nil when the presented PIN matches the account's
// stored hash, util.ErrInvalidPIN otherwise. The mismatch reason is
// deliberately not distinguished further.
func (g *AuthGuard) Authorize(account *domain.Account, pin string) error {
	if pin == "" {
		return util.ErrInvalidPIN
	}
	if err := g.hasher.Compare(account.PinHash, pin); err != nil {
		return util.ErrInvalidPIN
	}
	return nil
}
