package mapper

import (
	"maps"
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/catalog/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
)

// SearchQuery binds the catalog search query string.
type SearchQuery struct {
	Type     string `form:"type"`
	MinPrice *int64 `form:"minPrice"`
	MaxPrice *int64 `form:"maxPrice"`
	Keyword  string `form:"keyword"`
	Breed    string `form:"breed"`
	City     string `form:"city"`
	OwnerID  string `form:"ownerId"`
	AsOwner  bool   `form:"asOwner"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// CreatePetRequest is the inbound payload for a new listing.
type CreatePetRequest struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Description string         `json:"description,omitempty"`
	PriceCents  int64          `json:"priceCents"`
	Status      *string        `json:"status,omitempty"`
	Images      []string       `json:"images,omitempty"`
}

// UpdatePetRequest keeps field presence so absent fields stay untouched.
type UpdatePetRequest struct {
	Version     *int64          `json:"version,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Type        *string         `json:"type,omitempty"`
	Attributes  *map[string]any `json:"attributes,omitempty"`
	Description *string         `json:"description,omitempty"`
	PriceCents  *int64          `json:"priceCents,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Images      *[]string       `json:"images,omitempty"`
}

type Image struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

type Owner struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Image          string `json:"image,omitempty"`
	City           string `json:"city,omitempty"`
	SellerVerified bool   `json:"sellerVerified"`
}

// Pet is the HTTP representation of a listing.
type Pet struct {
	ID          int64          `json:"id"`
	OwnerID     string         `json:"ownerId"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Breed       string         `json:"breed,omitempty"`
	Attributes  map[string]any `json:"attributes"`
	Description string         `json:"description,omitempty"`
	PriceCents  int64          `json:"priceCents"`
	Status      string         `json:"status"`
	Version     int64          `json:"version"`
	Images      []Image        `json:"images"`
	Owner       *Owner         `json:"owner,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type SearchResponse struct {
	Data       []Pet `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func (q SearchQuery) ToFilter() types.SearchFilter {
	return types.SearchFilter{
		Type:          q.Type,
		MinPriceCents: q.MinPrice,
		MaxPriceCents: q.MaxPrice,
		Keyword:       q.Keyword,
		Breed:         q.Breed,
		City:          q.City,
		OwnerID:       q.OwnerID,
		ViewAsOwner:   q.AsOwner,
		Status:        q.Status,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}
}

func (r CreatePetRequest) ToInput() types.CreatePetInput {
	return types.CreatePetInput{
		Name:        r.Name,
		Type:        r.Type,
		Attributes:  maps.Clone(r.Attributes),
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Status:      r.Status,
		ImageURLs:   r.Images,
	}
}

func (r UpdatePetRequest) ToInput(petID int64) types.UpdatePetInput {
	return types.UpdatePetInput{
		PetID:           petID,
		ExpectedVersion: r.Version,
		Name:            r.Name,
		Type:            r.Type,
		Attributes:      r.Attributes,
		Description:     r.Description,
		PriceCents:      r.PriceCents,
		Status:          r.Status,
		ImageURLs:       r.Images,
	}
}

// FromListing maps a domain listing into its transport form.
func FromListing(l *domain.Listing) Pet {
	images := make([]Image, 0, len(l.Pet.Images))
	for _, img := range l.Pet.Images {
		images = append(images, Image{URL: img.URL, IsPrimary: img.IsPrimary})
	}
	attrs := maps.Clone(l.Pet.Attributes)
	if attrs == nil {
		attrs = map[string]any{}
	}
	out := Pet{
		ID:          l.Pet.ID,
		OwnerID:     l.Pet.OwnerID,
		Name:        l.Pet.Name,
		Type:        string(l.Pet.Type),
		Breed:       l.Pet.Breed(),
		Attributes:  attrs,
		Description: l.Pet.Description,
		PriceCents:  l.Pet.PriceCents,
		Status:      string(l.Pet.Status),
		Version:     l.Pet.Version,
		Images:      images,
		CreatedAt:   l.Pet.CreatedAt,
		UpdatedAt:   l.Pet.UpdatedAt,
	}
	if l.Owner != nil {
		out.Owner = &Owner{
			ID:             l.Owner.ID,
			Name:           l.Owner.Name,
			Image:          l.Owner.Image,
			City:           l.Owner.City,
			SellerVerified: l.Owner.SellerVerified,
		}
	}
	return out
}

func FromSearchResult(result types.SearchResult) SearchResponse {
	data := make([]Pet, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, FromListing(&result.Data[i]))
	}
	return SearchResponse{
		Data:       data,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}
