package marketplaceserver

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/pet-marketplace/internal/shared/errors"
)

var (
	errMalformedAuthorization = errors.New("authorization header must be a bearer token")
	errNoAuthenticator        = errors.New("authentication is not configured")
)

// respondError maps an application error through the shared responder.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apierrors.RespondError(c, err)
}

func abortWithError(c *gin.Context, err error) {
	respondError(c, err)
	c.Abort()
}

// respondBadRequest reports an unreadable body or query.
func respondBadRequest(c *gin.Context, err error) {
	apierrors.DefaultResponder.BadRequest(c, err.Error())
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		apierrors.DefaultResponder.BadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
