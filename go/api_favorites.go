package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	favmapper "github.com/Apurer/pet-marketplace/internal/domains/favorites/adapters/http/mapper"
	favports "github.com/Apurer/pet-marketplace/internal/domains/favorites/ports"
)

type FavoritesAPI struct {
	service favports.Service
}

func NewFavoritesAPI(service favports.Service) FavoritesAPI {
	return FavoritesAPI{service: service}
}

// Post /api/favorites/:petId/toggle
func (api FavoritesAPI) Toggle(c *gin.Context) {
	petID, ok := parseIDParam(c, "petId")
	if !ok {
		return
	}
	result, err := api.service.Toggle(c.Request.Context(), principalFrom(c), petID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, favmapper.FromToggle(petID, result))
}

// Get /api/favorites/:petId
func (api FavoritesAPI) Status(c *gin.Context) {
	petID, ok := parseIDParam(c, "petId")
	if !ok {
		return
	}
	favorite, err := api.service.IsFavorite(c.Request.Context(), principalFrom(c), petID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, favmapper.StatusResponse{PetID: petID, IsFavorite: favorite})
}

// Get /api/favorites
func (api FavoritesAPI) List(c *gin.Context) {
	var query favmapper.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.List(c.Request.Context(), principalFrom(c), query.ToRequest())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, favmapper.FromList(result))
}
