package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtpkg "telemart/storecore/pkg/jwt"
	"telemart/storecore/pkg/response"
)

const ContextKeyClaims = "token_claims"

// TokenAuth validates a Bearer token of the expected type. Service tokens
// guard the storefront API, webhook tokens guard provider callbacks.
func TokenAuth(jwtManager *jwtpkg.Manager, tokenType jwtpkg.TokenType) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		if claims.TokenType != tokenType {
			response.Unauthorized(c, "invalid token type")
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}
