package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Johnhpure/meet/internal/auth"
	"github.com/Johnhpure/meet/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) VerifyToken(token string) (*auth.Claims, error) {
	return f.verifyFn(token)
}

func protectedRouter(v middlewares.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middlewares.NewAuthMiddleware(v).RequireAdmin(), func(c *gin.Context) {
		username, _ := middlewares.AdminUsernameFromContext(c)
		c.String(http.StatusOK, username)
	})
	return r
}

func TestRequireAdminValidToken(t *testing.T) {
	v := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			if token != "good-token" {
				return nil, errors.New("bad token")
			}
			return &auth.Claims{Username: "admin"}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	protectedRouter(v).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	if rec.Body.String() != "admin" {
		t.Fatalf("identity not set: %q", rec.Body.String())
	}
}

func TestRequireAdminMissingHeader(t *testing.T) {
	v := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			t.Fatalf("verifier called without a bearer header")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	protectedRouter(v).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdminRejectedToken(t *testing.T) {
	v := &fakeVerifier{
		verifyFn: func(token string) (*auth.Claims, error) {
			return nil, errors.New("expired")
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer stale-token")

	protectedRouter(v).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
