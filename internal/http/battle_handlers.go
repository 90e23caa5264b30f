package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EndBattleRecord godoc
// @Summary Mark a battle record ended and run the auto-post generator
// @Tags battle-records
// @Produce json
// @Security BearerAuth
// @Param id path string true "battle record id"
// @Success 200 {object} map[string]interface{}
// @Router /api/battle-records/{id}/end [post]
func (h *Handler) EndBattleRecord(c *gin.Context) {
	recordID, err := parseOID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "BATTLE_RECORD_NOT_FOUND", "battle record not found")
		return
	}
	rec, post, err := h.Svc.EndBattleRecord(c.Request.Context(), recordID)
	if err != nil {
		failErr(c, err)
		return
	}
	data := gin.H{
		"battle_record": h.recordJSON(rec),
		"post_created":  post != nil,
	}
	if post != nil {
		data["post"] = h.postJSON(post, Viewer(c))
	}
	ok(c, http.StatusOK, data, nil)
}
