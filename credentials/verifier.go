// Package credentials hashes and verifies account passwords. The
// hashing primitive is bcrypt; callers treat it as a one-way function
// with verification and never see the salt or cost handling.
package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

const defaultCost = 10

// Verifier hashes passwords on write and compares them on read. The
// cost factor is fixed at construction.
type Verifier struct {
	cost int
}

type VerifierOption func(*Verifier)

// WithCost overrides the bcrypt cost factor. Out-of-range values are
// ignored.
func WithCost(cost int) VerifierOption {
	return func(v *Verifier) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			v.cost = cost
		}
	}
}

func NewVerifier(options ...VerifierOption) *Verifier {
	v := &Verifier{cost: defaultCost}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Hash generates a salted hash of the plaintext. It is only called
// when a plaintext password is newly stored - never on an
// already-hashed value.
func (v *Verifier) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	return string(bytes), err
}

// Verify compares a plaintext against a stored hash. Any internal
// error is treated as a non-match.
func (v *Verifier) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
