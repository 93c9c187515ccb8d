package types

import (
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// UserProfile pairs an account with its profile.
type UserProfile struct {
	User    domain.User
	Profile domain.Profile
}
