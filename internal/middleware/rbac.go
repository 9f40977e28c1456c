package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// RBAC enforces role-based access control for routes. "SELF" allows the
// caller when the :id route param matches their own user ID.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowSelf := false
		allowedPerfis := make(map[models.Perfil]struct{})

		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedPerfis[models.Perfil(a)] = struct{}{}
		}

		if _, ok := allowedPerfis[claims.Perfil]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequirePerfis is a helper that accepts a list of profiles.
func RequirePerfis(perfis ...models.Perfil) gin.HandlerFunc {
	allowed := make([]string, len(perfis))
	for i, p := range perfis {
		allowed[i] = string(p)
	}
	return RBAC(allowed...)
}
