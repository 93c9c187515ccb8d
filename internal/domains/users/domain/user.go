package domain

import (
	"errors"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
)

const (
	RoleCustomer  = "customer"
	RoleSeller    = "seller"
	RoleCaretaker = "caretaker"
	RoleAdmin     = "admin"
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrNameTooLong   = errors.New("name is too long")
	ErrInvalidEmail  = errors.New("email is invalid")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
	// ErrInvalidRole is returned for unknown roles and for roles that cannot be
	// self-assigned at sign-up.
	ErrInvalidRole = errors.New("role cannot be requested")
)

// User is a marketplace account.
type User struct {
	ID           string
	Name         string
	Email        string
	Image        string
	Roles        []string
	PasswordHash string
	Banned       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the optional public details of a user.
type Profile struct {
	UserID         string
	Bio            string
	PhoneNumber    string
	AddressCity    string
	SellerRating   int
	SellerVerified bool
}

// ProfilePatch lists the profile fields a user may change. Nil fields are kept.
type ProfilePatch struct {
	Bio         *string
	PhoneNumber *string
	AddressCity *string
}

// Session is a live login keyed by the token id it was issued with.
type Session struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NewUser validates sign-up data. Every account is a customer; sellers and
// caretakers may be requested in addition.
func NewUser(id, name, email string, requestedRoles []string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrNameTooLong
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	roles := []string{RoleCustomer}
	for _, raw := range requestedRoles {
		role := strings.ToLower(strings.TrimSpace(raw))
		switch role {
		case RoleCustomer:
		case RoleSeller, RoleCaretaker:
			if !slices.Contains(roles, role) {
				roles = append(roles, role)
			}
		default:
			return nil, ErrInvalidRole
		}
	}
	return &User{ID: id, Name: name, Email: normalized, Roles: roles}, nil
}

// NormalizeEmail lower-cases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword applies the minimum strength rule.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Apply merges a patch into the profile, trimming every provided value.
func (p *Profile) Apply(patch ProfilePatch) {
	if patch.Bio != nil {
		p.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
	}
	if patch.AddressCity != nil {
		p.AddressCity = strings.TrimSpace(*patch.AddressCity)
	}
}
