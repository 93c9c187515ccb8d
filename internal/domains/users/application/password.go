package application

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/pet-marketplace/internal/domains/users/ports"
)

// BcryptHasher stores passwords as bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ports.ErrInvalidCredentials
		}
		return err
	}
	return nil
}

var _ ports.PasswordHasher = BcryptHasher{}
