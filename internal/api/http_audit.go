package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListAuditLogs returns recent audit entries, optionally filtered by
// account. Newest entries come first.
func (h *HTTPHandler) ListAuditLogs(c *gin.Context) {
	var accountID uint
	if raw := c.Query("account_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, BadRequest("invalid account_id"))
			return
		}
		accountID = uint(parsed)
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, BadRequest("invalid limit"))
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	logs, err := h.repo.ListAuditLogs(ctx, accountID, limit)
	if err != nil {
		logrus.WithError(err).Error("failed to list audit logs")
		respondError(c, InternalError("failed to list audit logs"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
