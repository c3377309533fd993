package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/Johnhpure/meet/internal/auth"
	"github.com/Johnhpure/meet/internal/config"
	"github.com/Johnhpure/meet/internal/domain/admin"
	"github.com/Johnhpure/meet/internal/security"
	"github.com/gin-gonic/gin"
)

type AdminReader interface {
	GetByUsername(ctx context.Context, username string) (admin.Admin, error)
}

type AuthHandler struct {
	admins AdminReader
	jwt    *auth.Manager
	log    *slog.Logger
}

func NewAuthHandler(admins AdminReader, jwtManager *auth.Manager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		admins: admins,
		jwt:    jwtManager,
		log:    log,
	}
}

// Login checks the configured admin credentials and hands out a session
// token. Lookup failure and password failure answer identically so the
// endpoint does not leak which usernames exist.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req admin.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	found, err := h.admins.GetByUsername(cctx, req.Username)

	if err != nil {
		RespondUnauthorized(ctx, "username or password is incorrect")
		return
	}

	err = security.CheckPassword(found.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "username or password is incorrect")
		return
	}

	token, err := h.jwt.GenerateToken(found.Username)

	if err != nil {
		h.log.Error("could not mint session token", "err", err)
		RespondInternal(ctx, "could not log in")
		return
	}

	RespondOK(ctx, gin.H{
		"username": found.Username,
		"token":    token,
	}, "login successful")
}
