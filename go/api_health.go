package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthAPI struct{}

// Get /healthz
func (HealthAPI) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
