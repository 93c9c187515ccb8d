package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	caremapper "github.com/Apurer/pet-marketplace/internal/domains/caretaking/adapters/http/mapper"
	caretypes "github.com/Apurer/pet-marketplace/internal/domains/caretaking/application/types"
	careports "github.com/Apurer/pet-marketplace/internal/domains/caretaking/ports"
)

// CaretakingAPI wires HTTP transport with care services and bookings.
type CaretakingAPI struct {
	service careports.Service
}

func NewCaretakingAPI(service careports.Service) CaretakingAPI {
	return CaretakingAPI{service: service}
}

// Get /api/caretaking/services
func (api CaretakingAPI) ListServices(c *gin.Context) {
	services, err := api.service.ListServices(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caremapper.FromServices(services))
}

// Post /api/caretaking/services
func (api CaretakingAPI) CreateService(c *gin.Context) {
	var payload caremapper.CreateServiceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	service, err := api.service.CreateService(c.Request.Context(), principalFrom(c), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, caremapper.FromService(service))
}

// Post /api/caretaking/bookings
func (api CaretakingAPI) CreateBooking(c *gin.Context) {
	var payload caremapper.CreateBookingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	booking, err := api.service.CreateBooking(c.Request.Context(), principalFrom(c), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, caremapper.FromBooking(booking))
}

// Get /api/caretaking/bookings?role=customer|provider
func (api CaretakingAPI) GetMyBookings(c *gin.Context) {
	bookings, err := api.service.GetMyBookings(c.Request.Context(), principalFrom(c), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caremapper.FromBookings(bookings))
}

// Patch /api/caretaking/bookings/:bookingId/status
func (api CaretakingAPI) UpdateBookingStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "bookingId")
	if !ok {
		return
	}
	var payload caremapper.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := caretypes.UpdateBookingStatusInput{BookingID: id, Status: payload.Status}
	booking, err := api.service.UpdateBookingStatus(c.Request.Context(), principalFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caremapper.FromBooking(booking))
}

// Post /api/caretaking/bookings/:bookingId/logs
func (api CaretakingAPI) AddLog(c *gin.Context) {
	id, ok := parseIDParam(c, "bookingId")
	if !ok {
		return
	}
	var payload caremapper.AddLogRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	entry, err := api.service.AddLog(c.Request.Context(), principalFrom(c), payload.ToInput(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, caremapper.FromLog(entry))
}

// Get /api/caretaking/bookings/:bookingId/logs
func (api CaretakingAPI) ListLogs(c *gin.Context) {
	id, ok := parseIDParam(c, "bookingId")
	if !ok {
		return
	}
	logs, err := api.service.ListLogs(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, caremapper.FromLogs(logs))
}
