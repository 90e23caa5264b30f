package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lacus-ops/bbs-service/docs"
	"github.com/lacus-ops/bbs-service/internal/domain"
)

// Router assembles the full route table.
func Router(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("", h.Auth())
	authed.GET("/auth/me", h.Me)

	forum := authed.Group("/bbs", h.CSRFGuard())
	{
		forum.GET("/boards", h.ListBoards)

		forum.GET("/posts", h.ListPosts)
		forum.POST("/posts", h.CreatePost)
		forum.GET("/posts/:id", h.GetPost)
		forum.PATCH("/posts/:id", h.UpdatePost)
		forum.POST("/posts/:id/hide", h.HidePost)
		forum.POST("/posts/:id/replies", h.AddReply)

		forum.PATCH("/replies/:id", h.UpdateReply)
		forum.POST("/replies/:id/hide", h.HideReply)

		forum.GET("/pilots/:id/recent-posts", h.RecentPostsForPilot)

		admin := forum.Group("", h.RequireRoles(domain.RoleAdmin))
		admin.POST("/posts/:id/unhide", h.UnhidePost)
		admin.POST("/posts/:id/pin", h.PinPost)
		admin.PUT("/posts/:id/pilots", h.UpdatePostPilots)
	}

	records := authed.Group("/battle-records", h.CSRFGuard(), h.RequireRoles(domain.RoleAdmin, domain.RoleOperator))
	records.POST("/:id/end", h.EndBattleRecord)

	return r
}

// Healthz godoc
// @Summary Liveness and datastore reachability
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		fail(c, http.StatusServiceUnavailable, "UNAVAILABLE", "datastore unreachable")
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}
