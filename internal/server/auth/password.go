package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatchedHashAndPassword = errors.New("password does not match")

// MaxPasswordBytes is the bcrypt input limit; longer passwords are never hashed.
const MaxPasswordBytes = 72

// Hasher is the one-way password hash capability.
type Hasher interface {
	Hash(password string) (string, error)
	// Compare returns ErrMismatchedHashAndPassword on a wrong password.
	Compare(hash, password string) error
}

// BcryptHasher hashes with bcrypt at the given cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	// bcrypt reads only the first 72 bytes, so an over-long password would
	// match on its prefix. It still pays for a compare to keep timing flat.
	if len(password) > MaxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password[:MaxPasswordBytes]))
		return ErrMismatchedHashAndPassword
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedHashAndPassword
	}
	return err
}
