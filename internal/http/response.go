package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/bbs"
	"github.com/lacus-ops/bbs-service/internal/log"
)

// Every response uses the same envelope: {success, data, error, meta}.

func ok(c *gin.Context, status int, data any, meta any) {
	body := gin.H{"success": true, "data": data}
	if meta != nil {
		body["meta"] = meta
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// failErr maps service errors onto the envelope; anything untyped is a 500.
func failErr(c *gin.Context, err error) {
	var apiErr *bbs.Error
	if errors.As(err, &apiErr) {
		fail(c, apiErr.Status, apiErr.Code, apiErr.Message)
		return
	}
	log.L().Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}
