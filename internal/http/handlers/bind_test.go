package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Johnhpure/meet/internal/domain/admin"
	"github.com/Johnhpure/meet/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/login", func(ctx *gin.Context) {
		var req admin.LoginRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})
	return r
}

func postBind(r *gin.Engine, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestBindJSONMissingField(t *testing.T) {
	rec := postBind(bindRouter(), `{"username":"admin"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)

	if env.Message != "password is required" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestBindJSONMalformedBody(t *testing.T) {
	rec := postBind(bindRouter(), `{"username":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	env := decodeEnvelope(t, rec)

	if env.Message == "" {
		t.Fatalf("expected a readable message")
	}
}

func TestBindJSONWrongType(t *testing.T) {
	rec := postBind(bindRouter(), `{"username":1,"password":"x"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	env := decodeEnvelope(t, rec)

	if env.Message != "username must be of type string" {
		t.Fatalf("message = %q", env.Message)
	}
}
