package mapper

import (
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/users/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/users/domain"
)

type RegisterRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries a partial profile; omitted fields are kept.
type UpdateProfileRequest struct {
	Bio         *string `json:"bio"`
	PhoneNumber *string `json:"phoneNumber"`
	AddressCity *string `json:"addressCity"`
}

// User is the account payload shown to its owner.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type Profile struct {
	Bio            string `json:"bio"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	AddressCity    string `json:"addressCity"`
	SellerRating   int    `json:"sellerRating"`
	SellerVerified bool   `json:"sellerVerified"`
}

type CurrentProfile struct {
	User
	Profile Profile `json:"profile"`
}

// PublicProfile omits contact details.
type PublicProfile struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Image   string   `json:"image,omitempty"`
	Roles   []string `json:"roles"`
	Profile Profile  `json:"profile"`
}

func (r RegisterRequest) ToInput() types.RegisterInput {
	return types.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password, Roles: r.Roles}
}

func (r LoginRequest) ToInput() types.LoginInput {
	return types.LoginInput{Email: r.Email, Password: r.Password}
}

func (r UpdateProfileRequest) ToPatch() domain.ProfilePatch {
	return domain.ProfilePatch{Bio: r.Bio, PhoneNumber: r.PhoneNumber, AddressCity: r.AddressCity}
}

func FromUser(u *domain.User) User {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return User{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, Roles: roles, CreatedAt: u.CreatedAt}
}

func FromLogin(r *types.LoginResult) LoginResponse {
	return LoginResponse{Token: r.Token, ExpiresAt: r.ExpiresAt, User: FromUser(&r.User)}
}

func FromCurrentProfile(p *types.UserProfile) CurrentProfile {
	return CurrentProfile{User: FromUser(&p.User), Profile: fromProfile(p.Profile, true)}
}

func FromPublicProfile(p *types.UserProfile) PublicProfile {
	user := FromUser(&p.User)
	return PublicProfile{ID: user.ID, Name: user.Name, Image: user.Image, Roles: user.Roles, Profile: fromProfile(p.Profile, false)}
}

func fromProfile(p domain.Profile, withContact bool) Profile {
	out := Profile{Bio: p.Bio, AddressCity: p.AddressCity, SellerRating: p.SellerRating, SellerVerified: p.SellerVerified}
	if withContact {
		out.PhoneNumber = p.PhoneNumber
	}
	return out
}
