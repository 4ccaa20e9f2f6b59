package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/storefront-go/apperror"
)

// bcrypt only looks at the first 72 bytes; longer inputs are rejected.
const maxPasswordBytes = 72

// Hasher hashes and verifies passwords with bcrypt.
// Cost is the work factor: each increment doubles the time per hash.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", apperror.NewValidationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes), nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. The comparison runs in
// constant time with respect to the hash contents; a malformed hash is a mismatch.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
