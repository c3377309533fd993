package middlewares

import (
	"net/http"
	"strings"

	"github.com/Johnhpure/meet/internal/auth"
	"github.com/gin-gonic/gin"
)

// TokenVerifier is kept small so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAdmin gates the admin panel routes behind a valid session token.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "missing or invalid session token")
			return
		}

		claims, err := m.jwt.VerifyToken(raw)
		if err != nil {
			abortUnauthorized(c, "invalid or expired session token")
			return
		}

		c.Set(string(CtxAdminUsername), claims.Username)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}

// AdminUsernameFromContext exposes the identity without handlers knowing the
// context key.
func AdminUsernameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(string(CtxAdminUsername))
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok
}
