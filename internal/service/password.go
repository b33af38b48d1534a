package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignora o rechaza todo lo que supere 72 bytes.
const maxPasswordBytes = 72

// PasswordHasher encapsula bcrypt; la sal va embebida en cada hash.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" || len(password) > maxPasswordBytes {
		return "", ErrWeakPassword
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrWeakPassword
		}
		return "", err
	}
	return string(hashBytes), nil
}

func (h *PasswordHasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
