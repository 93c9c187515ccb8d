// Package marketplaceserver is the gin transport of the marketplace API.
package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access says whether a route needs an authenticated principal.
type Access int

const (
	Public Access = iota
	Protected
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access decides whether the auth middleware requires a principal.
	Access Access
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the API routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	auth := newAuthMiddleware(handleFunctions.Authenticator)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{auth.optional}
		if route.Access == Protected {
			handlers = append(handlers, auth.require)
		}
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions bundles every handler group of the API.
type ApiHandleFunctions struct {
	Authenticator Authenticator

	HealthAPI     HealthAPI
	UserAPI       UserAPI
	CatalogAPI    CatalogAPI
	SalesAPI      SalesAPI
	CaretakingAPI CaretakingAPI
	FavoritesAPI  FavoritesAPI
	CommunityAPI  CommunityAPI
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Public, h.HealthAPI.Healthz},

		{"Register", http.MethodPost, "/api/auth/register", Public, h.UserAPI.Register},
		{"Login", http.MethodPost, "/api/auth/login", Public, h.UserAPI.Login},
		{"Logout", http.MethodPost, "/api/auth/logout", Protected, h.UserAPI.Logout},
		{"GetCurrentUser", http.MethodGet, "/api/users/me", Protected, h.UserAPI.GetCurrentUser},
		{"UpdateProfile", http.MethodPut, "/api/users/me/profile", Protected, h.UserAPI.UpdateProfile},
		{"GetUser", http.MethodGet, "/api/users/:userId", Public, h.UserAPI.GetUser},

		{"SearchPets", http.MethodGet, "/api/catalog/pets", Public, h.CatalogAPI.SearchPets},
		{"GetPet", http.MethodGet, "/api/catalog/pets/:petId", Public, h.CatalogAPI.GetPet},
		{"CreatePet", http.MethodPost, "/api/catalog/pets", Protected, h.CatalogAPI.CreatePet},
		{"UpdatePet", http.MethodPatch, "/api/catalog/pets/:petId", Protected, h.CatalogAPI.UpdatePet},
		{"DeletePet", http.MethodDelete, "/api/catalog/pets/:petId", Protected, h.CatalogAPI.DeletePet},

		{"CreateOrder", http.MethodPost, "/api/sales/orders", Protected, h.SalesAPI.CreateOrder},
		{"ListOrders", http.MethodGet, "/api/sales/orders", Protected, h.SalesAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/api/sales/orders/:orderId", Protected, h.SalesAPI.GetOrder},
		{"CancelOrder", http.MethodPost, "/api/sales/orders/:orderId/cancel", Protected, h.SalesAPI.CancelOrder},
		{"UpdateOrderStatus", http.MethodPatch, "/api/sales/orders/:orderId/status", Protected, h.SalesAPI.UpdateOrderStatus},

		{"ListServices", http.MethodGet, "/api/caretaking/services", Public, h.CaretakingAPI.ListServices},
		{"CreateService", http.MethodPost, "/api/caretaking/services", Protected, h.CaretakingAPI.CreateService},
		{"CreateBooking", http.MethodPost, "/api/caretaking/bookings", Protected, h.CaretakingAPI.CreateBooking},
		{"GetMyBookings", http.MethodGet, "/api/caretaking/bookings", Protected, h.CaretakingAPI.GetMyBookings},
		{"UpdateBookingStatus", http.MethodPatch, "/api/caretaking/bookings/:bookingId/status", Protected, h.CaretakingAPI.UpdateBookingStatus},
		{"AddCareLog", http.MethodPost, "/api/caretaking/bookings/:bookingId/logs", Protected, h.CaretakingAPI.AddLog},
		{"ListCareLogs", http.MethodGet, "/api/caretaking/bookings/:bookingId/logs", Protected, h.CaretakingAPI.ListLogs},

		{"ToggleFavorite", http.MethodPost, "/api/favorites/:petId/toggle", Protected, h.FavoritesAPI.Toggle},
		{"GetFavoriteStatus", http.MethodGet, "/api/favorites/:petId", Protected, h.FavoritesAPI.Status},
		{"ListFavorites", http.MethodGet, "/api/favorites", Protected, h.FavoritesAPI.List},

		{"ListPosts", http.MethodGet, "/api/community/posts", Public, h.CommunityAPI.ListPosts},
		{"GetPost", http.MethodGet, "/api/community/posts/:postId", Public, h.CommunityAPI.GetPost},
		{"CreatePost", http.MethodPost, "/api/community/posts", Protected, h.CommunityAPI.CreatePost},
		{"AddComment", http.MethodPost, "/api/community/posts/:postId/comments", Protected, h.CommunityAPI.AddComment},
		{"DeletePost", http.MethodDelete, "/api/community/posts/:postId", Protected, h.CommunityAPI.DeletePost},
	}
}
