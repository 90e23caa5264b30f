package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/domain"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/metrics"
	"github.com/lacus-ops/bbs-service/internal/security"
)

const viewerKey = "viewer"

// RequestID tags every request, honoring an inbound X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Metrics records per-route counters and latency.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.InFlight.Inc()
		c.Next()
		metrics.InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Auth requires a valid bearer token and loads the live, active account
// behind it into the context.
func (h *Handler) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			c.Abort()
			return
		}
		claims, err := security.ParseAccess(h.Cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			c.Abort()
			return
		}
		user, err := h.loadUser(c, claims.UID)
		if err != nil || user == nil || !user.Active {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "account unavailable")
			c.Abort()
			return
		}
		c.Set(viewerKey, user)
		c.Next()
	}
}

// RequireRoles passes when the viewer holds at least one of the roles.
func (h *Handler) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := Viewer(c)
		for _, role := range roles {
			if viewer.HasRole(role) {
				c.Next()
				return
			}
		}
		fail(c, http.StatusForbidden, "FORBIDDEN", "insufficient role")
		c.Abort()
	}
}

// CSRFGuard validates X-CSRF-Token on state-changing methods against the
// per-user token issued at login.
func (h *Handler) CSRFGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		viewer := Viewer(c)
		valid, err := h.CSRF.Validate(c.Request.Context(), viewer.ID.Hex(), c.GetHeader("X-CSRF-Token"))
		if err != nil {
			log.L().Error("csrf validation errored", zap.Error(err))
			fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
			c.Abort()
			return
		}
		if !valid {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "csrf token missing or stale")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Viewer returns the authenticated user placed by Auth, nil outside it.
func Viewer(c *gin.Context) *domain.User {
	if v, exists := c.Get(viewerKey); exists {
		if u, okU := v.(*domain.User); okU {
			return u
		}
	}
	return nil
}

func (h *Handler) loadUser(c *gin.Context, uid string) (*domain.User, error) {
	oid, err := parseOID(uid)
	if err != nil {
		return nil, err
	}
	return h.Store.FindUserByID(c.Request.Context(), oid)
}
