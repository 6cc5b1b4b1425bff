package api

import (
	"biblioteca/internal/entity"
	"biblioteca/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, BadRequest(fmt.Sprintf("invalid %s", name)))
		return 0, false
	}
	return uint(id), true
}

func (h *HTTPHandler) ListAccounts(c *gin.Context) {
	var query entity.AccountQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, BadRequest("invalid query parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	accounts, meta, err := h.repo.ListAccounts(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list accounts")
		respondError(c, InternalError("failed to list accounts"))
		return
	}

	summaries := make([]entity.AccountSummary, 0, len(accounts))
	for i := range accounts {
		summaries = append(summaries, service.MakeAccountSummary(&accounts[i]))
	}

	c.JSON(http.StatusOK, entity.AccountListResponse{Accounts: summaries, Meta: meta})
}

func (h *HTTPHandler) UnlockAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	current := CurrentAccount(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	byEmail := ""
	if current != nil {
		byEmail = current.Email
	}
	if err := h.authService.Unlock(ctx, id, byEmail); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			respondError(c, NotFound(ErrCodeAccountNotFound, "account not found"))
			return
		}
		logrus.WithError(err).WithField("account_id", id).Error("failed to unlock account")
		respondError(c, InternalError("failed to unlock account"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account unlocked"})
}

// DeleteAccount soft-deletes: the row stays for loan history and audit
// trail, but the account can no longer log in.
func (h *HTTPHandler) DeleteAccount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	current := CurrentAccount(c)
	if current != nil && current.ID == id {
		respondError(c, BadRequest("cannot delete your own account"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	account, err := h.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, NotFound(ErrCodeAccountNotFound, "account not found"))
			return
		}
		logrus.WithError(err).WithField("account_id", id).Error("failed to load account")
		respondError(c, InternalError("failed to delete account"))
		return
	}

	if err := h.repo.SoftDeleteAccount(ctx, id); err != nil {
		logrus.WithError(err).WithField("account_id", id).Error("failed to delete account")
		respondError(c, InternalError("failed to delete account"))
		return
	}
	h.writeAudit(ctx, entity.AuditActionAccountDelete,
		fmt.Sprintf("account deleted: %s", account.Email), &id)

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
