package marketplaceserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

const principalKey = "marketplace.principal"

// Authenticator resolves a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (authz.Principal, error)
}

type authMiddleware struct {
	authenticator Authenticator
}

func newAuthMiddleware(a Authenticator) authMiddleware {
	return authMiddleware{authenticator: a}
}

// optional resolves the bearer token when one is sent. A malformed or
// rejected token fails the request even on public routes.
func (m authMiddleware) optional(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		c.Next()
		return
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		abortWithError(c, apperr.Wrap(apperr.ErrUnauthenticated, errMalformedAuthorization))
		return
	}
	if m.authenticator == nil {
		abortWithError(c, apperr.Wrap(apperr.ErrUnauthenticated, errNoAuthenticator))
		return
	}
	principal, err := m.authenticator.Authenticate(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Set(principalKey, principal)
	c.Next()
}

func (m authMiddleware) require(c *gin.Context) {
	if !principalFrom(c).Authenticated() {
		abortWithError(c, authz.RequireUser(authz.Anonymous))
		return
	}
	c.Next()
}

// principalFrom returns the caller, or the anonymous principal.
func principalFrom(c *gin.Context) authz.Principal {
	if value, ok := c.Get(principalKey); ok {
		if principal, ok := value.(authz.Principal); ok {
			return principal
		}
	}
	return authz.Anonymous
}
