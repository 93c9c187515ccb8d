package mapper

import (
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/favorites/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/page"
)

type ListQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

type ToggleResponse struct {
	PetID      int64  `json:"petId"`
	Result     string `json:"result"`
	IsFavorite bool   `json:"isFavorite"`
}

type StatusResponse struct {
	PetID      int64 `json:"petId"`
	IsFavorite bool  `json:"isFavorite"`
}

type Favorite struct {
	PetID       int64     `json:"petId"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	PriceCents  int64     `json:"priceCents"`
	Status      string    `json:"status"`
	Images      []string  `json:"images"`
	FavoritedAt time.Time `json:"favoritedAt"`
}

type ListResponse struct {
	Data       []Favorite `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

func (q ListQuery) ToRequest() page.Request {
	return page.Request{Page: q.Page, PageSize: q.PageSize}
}

func FromToggle(petID int64, result domain.ToggleResult) ToggleResponse {
	return ToggleResponse{PetID: petID, Result: string(result), IsFavorite: result == domain.Added}
}

func FromList(result page.Result[domain.FavoritePet]) ListResponse {
	data := make([]Favorite, 0, len(result.Data))
	for _, f := range result.Data {
		images := f.Images
		if images == nil {
			images = []string{}
		}
		data = append(data, Favorite{
			PetID:       f.PetID,
			OwnerID:     f.OwnerID,
			Name:        f.Name,
			Type:        f.Type,
			PriceCents:  f.PriceCents,
			Status:      f.Status,
			Images:      images,
			FavoritedAt: f.FavoritedAt,
		})
	}
	return ListResponse{
		Data:       data,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}
