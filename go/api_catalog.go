package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/pet-marketplace/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/pet-marketplace/internal/domains/catalog/ports"
)

// CatalogAPI wires HTTP transport with the catalog service.
type CatalogAPI struct {
	service catalogports.Service
}

func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

// Get /api/catalog/pets
// Public search; asOwner=true switches to the caller's owner view.
func (api CatalogAPI) SearchPets(c *gin.Context) {
	var query catalogmapper.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Search(c.Request.Context(), principalFrom(c), query.ToFilter())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromSearchResult(result))
}

// Get /api/catalog/pets/:petId
func (api CatalogAPI) GetPet(c *gin.Context) {
	id, ok := parseIDParam(c, "petId")
	if !ok {
		return
	}
	listing, err := api.service.GetPet(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromListing(listing))
}

// Post /api/catalog/pets
func (api CatalogAPI) CreatePet(c *gin.Context) {
	var payload catalogmapper.CreatePetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	listing, err := api.service.CreatePet(c.Request.Context(), principalFrom(c), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromListing(listing))
}

// Patch /api/catalog/pets/:petId
func (api CatalogAPI) UpdatePet(c *gin.Context) {
	id, ok := parseIDParam(c, "petId")
	if !ok {
		return
	}
	var payload catalogmapper.UpdatePetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	listing, err := api.service.UpdatePet(c.Request.Context(), principalFrom(c), payload.ToInput(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromListing(listing))
}

// Delete /api/catalog/pets/:petId
func (api CatalogAPI) DeletePet(c *gin.Context) {
	id, ok := parseIDParam(c, "petId")
	if !ok {
		return
	}
	if err := api.service.DeletePet(c.Request.Context(), principalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
