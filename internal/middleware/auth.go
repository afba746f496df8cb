package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/theminddepartment/booking-api/pkg/auth"
)

const ContextAdminEmail = "admin_email"

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate gates the /admin surface behind a bearer token issued by
// the login endpoint.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Status: "error", Code: "UNAUTHORIZED", Message: "missing authorization header",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Status: "error", Code: "UNAUTHORIZED", Message: "invalid authorization format",
			})
			return
		}

		claims, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Status: "error", Code: "UNAUTHORIZED", Message: "invalid token",
			})
			return
		}

		c.Set(ContextAdminEmail, claims.Email)
		c.Next()
	}
}
