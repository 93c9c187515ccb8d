package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usermapper "github.com/Apurer/pet-marketplace/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/pet-marketplace/internal/domains/users/ports"
)

// UserAPI wires HTTP transport with the users bounded context.
type UserAPI struct {
	service userports.Service
}

func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /api/auth/register
func (api UserAPI) Register(c *gin.Context) {
	var payload usermapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.Register(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usermapper.FromUser(user))
}

// Post /api/auth/login
func (api UserAPI) Login(c *gin.Context) {
	var payload usermapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromLogin(result))
}

// Post /api/auth/logout
func (api UserAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), principalFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/users/me
func (api UserAPI) GetCurrentUser(c *gin.Context) {
	profile, err := api.service.GetCurrentProfile(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromCurrentProfile(profile))
}

// Put /api/users/me/profile
func (api UserAPI) UpdateProfile(c *gin.Context) {
	var payload usermapper.UpdateProfileRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	profile, err := api.service.UpdateProfile(c.Request.Context(), principalFrom(c), payload.ToPatch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromCurrentProfile(profile))
}

// Get /api/users/:userId
func (api UserAPI) GetUser(c *gin.Context) {
	profile, err := api.service.GetPublicProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromPublicProfile(profile))
}
