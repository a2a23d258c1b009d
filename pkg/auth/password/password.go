// Package password provides one-way password hashing and verification
// using bcrypt. Each hash embeds a random salt, so hashing the same
// plaintext twice yields two different strings that both verify.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords with a fixed cost factor.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. A cost of 0 selects the bcrypt default.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext. An error here indicates an
// environment problem (e.g. the password exceeds bcrypt's length limit)
// and is propagated, not recovered.
func (h *Hasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the password that produced
// storedHash. A malformed stored hash verifies as false, never panics.
func (h *Hasher) Verify(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
