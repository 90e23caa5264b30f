package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lacus-ops/bbs-service/internal/repo"
	"github.com/lacus-ops/bbs-service/internal/security"
)

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Exchange credentials for an access token and CSRF token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginReq true "credentials"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "username and password are required")
		return
	}

	user, err := h.Store.FindUserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, repo.ErrNotFound) {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	if !user.Active || !security.CheckPassword(user.PasswordHash, req.Password) {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}

	token, err := security.MakeAccess(h.Cfg.JWTSecret, user.ID.Hex(), time.Duration(h.Cfg.AccessTTLMinutes)*time.Minute)
	if err != nil {
		failErr(c, err)
		return
	}
	csrf, err := h.CSRF.Issue(c.Request.Context(), user.ID.Hex())
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"access_token": token,
		"csrf_token":   csrf,
		"user":         h.userJSON(user),
	}, nil)
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	ok(c, http.StatusOK, h.userJSON(Viewer(c)), nil)
}
