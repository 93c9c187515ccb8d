package domain

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
	"unicode/utf8"
)

// Type is the species group a listing belongs to.
type Type string

const (
	TypeDog     Type = "dog"
	TypeCat     Type = "cat"
	TypeBird    Type = "bird"
	TypeFish    Type = "fish"
	TypeReptile Type = "reptile"
	TypeInsect  Type = "insect"
	TypeExotic  Type = "exotic"
)

// Status represents the lifecycle state of a listing.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
	StatusCareStay  Status = "care_stay"
	StatusDeceased  Status = "deceased"
)

// AttributeBreed is the attributes key searched by breed filters.
const AttributeBreed = "breed"

const maxNameLength = 100

var (
	ErrEmptyName      = errors.New("pet name is required")
	ErrNameTooLong    = fmt.Errorf("pet name must be at most %d characters", maxNameLength)
	ErrInvalidType    = errors.New("pet type is invalid")
	ErrInvalidStatus  = errors.New("pet status is invalid")
	ErrNegativePrice  = errors.New("price must not be negative")
	ErrEmptyImageURL  = errors.New("image url must not be empty")
	ErrStatusReserved = errors.New("status is managed by the order workflow")
	// ErrListingLocked is returned when a pending or sold pet is modified by its owner.
	ErrListingLocked = errors.New("pet is reserved or sold")
)

// ParseType validates a pet type.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypeDog, TypeCat, TypeBird, TypeFish, TypeReptile, TypeInsect, TypeExotic:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
}

// ParseStatus validates a pet status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusAvailable, StatusPending, StatusSold, StatusCareStay, StatusDeceased:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// OwnerSettable reports whether an owner may assign the status directly.
// Pending and sold are reached only through orders.
func (s Status) OwnerSettable() bool {
	switch s {
	case StatusAvailable, StatusCareStay, StatusDeceased:
		return true
	}
	return false
}

// Locked reports whether the pet is held by an order.
func (s Status) Locked() bool {
	return s == StatusPending || s == StatusSold
}

// Image is a picture of a pet. Exactly one image of a non-empty set is primary.
type Image struct {
	URL       string
	IsPrimary bool
}

// Pet is the catalog listing aggregate.
type Pet struct {
	ID          int64
	OwnerID     string
	Name        string
	Type        Type
	Attributes  map[string]any
	Description string
	PriceCents  int64
	Status      Status
	Version     int64
	Images      []Image
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPet validates the invariants of a fresh listing.
func NewPet(ownerID, name string, petType Type, priceCents int64) (*Pet, error) {
	p := &Pet{OwnerID: ownerID, Status: StatusAvailable, Version: 1, Attributes: map[string]any{}}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.ChangeType(petType); err != nil {
		return nil, err
	}
	if err := p.Reprice(priceCents); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename trims and validates the listing name.
func (p *Pet) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	p.Name = name
	return nil
}

func (p *Pet) ChangeType(t Type) error {
	parsed, err := ParseType(string(t))
	if err != nil {
		return err
	}
	p.Type = parsed
	return nil
}

func (p *Pet) Reprice(cents int64) error {
	if cents < 0 {
		return ErrNegativePrice
	}
	p.PriceCents = cents
	return nil
}

// Describe replaces the free-text description.
func (p *Pet) Describe(description string) {
	p.Description = strings.TrimSpace(description)
}

// ReplaceAttributes swaps the open attribute map.
func (p *Pet) ReplaceAttributes(attrs map[string]any) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	p.Attributes = maps.Clone(attrs)
}

// SetStatusByOwner applies a status chosen by the listing owner.
func (p *Pet) SetStatusByOwner(status Status) error {
	parsed, err := ParseStatus(string(status))
	if err != nil {
		return err
	}
	if parsed == p.Status {
		return nil
	}
	if p.Status.Locked() {
		return ErrListingLocked
	}
	if !parsed.OwnerSettable() {
		return fmt.Errorf("%w: %s", ErrStatusReserved, parsed)
	}
	p.Status = parsed
	return nil
}

// ReplaceImages swaps the whole image set; the first URL becomes primary.
func (p *Pet) ReplaceImages(urls []string) error {
	images := make([]Image, 0, len(urls))
	for i, raw := range urls {
		u := strings.TrimSpace(raw)
		if u == "" {
			return ErrEmptyImageURL
		}
		images = append(images, Image{URL: u, IsPrimary: i == 0})
	}
	p.Images = images
	return nil
}

// Breed returns the breed attribute as text, if any.
func (p *Pet) Breed() string {
	if p.Attributes == nil {
		return ""
	}
	if v, ok := p.Attributes[AttributeBreed]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// PrimaryImage returns the URL of the primary image or "".
func (p *Pet) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	return ""
}

// OwnerSummary is the public view of a listing's owner.
type OwnerSummary struct {
	ID             string
	Name           string
	Image          string
	City           string
	SellerVerified bool
}

// Listing is a pet joined with its owner for catalog reads.
type Listing struct {
	Pet   Pet
	Owner *OwnerSummary
}
