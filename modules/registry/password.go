package registry

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the default cost for bcrypt hashing.
	// A cost of 12 provides good security while keeping hashing time reasonable.
	DefaultBcryptCost = 12
)

// Gate is the pluggable password predicate checked by Room.Join for
// private rooms. A nil Gate means the room admits anyone.
type Gate func(password string) bool

// PasswordHasher provides password hashing and verification for
// private room gates.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a new PasswordHasher with default cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		cost: DefaultBcryptCost,
	}
}

// Hash generates a bcrypt hash of the given password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify checks if the provided password matches the hash.
func (h *PasswordHasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BcryptGate returns a Gate that admits passwords matching the stored
// bcrypt hash.
func BcryptGate(hash string) Gate {
	hasher := NewPasswordHasher()
	return func(password string) bool {
		return hasher.Verify(password, hash)
	}
}
