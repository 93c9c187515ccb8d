package memdb

import (
	"maps"
	"slices"
	"time"
)

// Rows mirror the relational tables created by the migrations package.

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

type Profile struct {
	UserID         string
	Bio            string
	PhoneNumber    string
	AddressCity    string
	SellerRating   int
	SellerVerified bool
}

type Session struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Pet struct {
	ID          int64
	OwnerID     string
	Name        string
	Type        string
	Attributes  map[string]any
	Description string
	PriceCents  int64
	Status      string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PetImage struct {
	ID        int64
	PetID     int64
	URL       string
	IsPrimary bool
	Position  int
}

type Order struct {
	ID               int64
	BuyerID          string
	PaymentRef       *string
	TotalAmountCents int64
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OrderItem struct {
	ID                   int64
	OrderID              int64
	PetID                int64
	PriceAtPurchaseCents int64
}

type CareService struct {
	ID             int64
	ProviderID     string
	Title          string
	Description    string
	Type           string
	BasePriceCents int64
	PriceUnit      string
	IsActive       bool
	CreatedAt      time.Time
}

type Booking struct {
	ID              int64
	CustomerID      string
	ServiceID       int64
	PetID           int64
	StartDate       time.Time
	EndDate         time.Time
	TotalPriceCents int64
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CareLog struct {
	ID          int64
	BookingID   int64
	AuthorID    string
	Title       string
	Description string
	ImageURL    string
	LoggedAt    time.Time
}

type Post struct {
	ID             int64
	AuthorID       string
	Title          string
	Content        string
	LookingForType *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

type FavoriteKey struct {
	UserID string
	PetID  int64
}

type Favorite struct {
	UserID    string
	PetID     int64
	CreatedAt time.Time
}

// OrderKeyID scopes an idempotency key to the buyer that sent it.
type OrderKeyID struct {
	BuyerID string
	Key     string
}

type OrderKey struct {
	BuyerID     string
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

func (u User) clone() User {
	u.Roles = slices.Clone(u.Roles)
	return u
}

func (p Pet) clone() Pet {
	p.Attributes = maps.Clone(p.Attributes)
	return p
}

func (o Order) clone() Order {
	if o.PaymentRef != nil {
		ref := *o.PaymentRef
		o.PaymentRef = &ref
	}
	return o
}

func (p Post) clone() Post {
	if p.LookingForType != nil {
		t := *p.LookingForType
		p.LookingForType = &t
	}
	return p
}
