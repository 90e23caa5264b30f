package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/log"
)

// ListBoards godoc
// @Summary List boards, provisioning base boards from the area registry first
// @Tags boards
// @Produce json
// @Security BearerAuth
// @Param is_active query string false "filter by active flag; omit for all"
// @Success 200 {object} map[string]interface{}
// @Router /api/bbs/boards [get]
func (h *Handler) ListBoards(c *gin.Context) {
	ctx := c.Request.Context()

	// Provisioning failures degrade to the stored board list.
	if _, err := h.Svc.EnsureBaseBoards(ctx); err != nil {
		log.L().Warn("base board provisioning failed", zap.Error(err))
	}

	// Tri-state: unset lists everything, unrecognized values too.
	var active *bool
	switch strings.ToLower(c.Query("is_active")) {
	case "1", "true", "yes":
		t := true
		active = &t
	case "0", "false", "no":
		f := false
		active = &f
	}

	boards, err := h.Store.ListBoards(ctx, active)
	if err != nil {
		failErr(c, err)
		return
	}
	out := make([]gin.H, 0, len(boards))
	for _, b := range boards {
		board := b
		out = append(out, h.boardJSON(&board))
	}
	ok(c, http.StatusOK, out, nil)
}
