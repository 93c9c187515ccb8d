package types

import (
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/page"
)

// SearchFilter carries the catalog search parameters as received from the
// boundary. ViewAsOwner asks for the private owner view; it is honoured only
// for the authenticated owner (OwnerID defaults to the caller) or an admin.
type SearchFilter struct {
	Type          string
	MinPriceCents *int64
	MaxPriceCents *int64
	Keyword       string
	Breed         string
	City          string
	OwnerID       string
	ViewAsOwner   bool
	Status        string
	Page          int
	PageSize      int
}

// SearchResult is one page of listings plus the filtered total.
type SearchResult = page.Result[domain.Listing]

// CreatePetInput describes a new listing. Status defaults to available.
type CreatePetInput struct {
	Name        string
	Type        string
	Attributes  map[string]any
	Description string
	PriceCents  int64
	Status      *string
	ImageURLs   []string
}

// UpdatePetInput is a partial update; nil fields are left untouched.
// ImageURLs, when set, replaces the whole image set.
type UpdatePetInput struct {
	PetID           int64
	ExpectedVersion *int64
	Name            *string
	Type            *string
	Attributes      *map[string]any
	Description     *string
	PriceCents      *int64
	Status          *string
	ImageURLs       *[]string
}
