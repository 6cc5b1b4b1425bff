package api

import (
	"biblioteca/internal/entity"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Backup dumps every table into one JSON archive and stores it through
// the configured storage backend.
func (h *HTTPHandler) Backup(c *gin.Context) {
	current := CurrentAccount(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	data, err := h.repo.DumpAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to dump tables")
		respondError(c, InternalError("failed to create backup"))
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		logrus.WithError(err).Error("failed to encode backup")
		respondError(c, InternalError("failed to create backup"))
		return
	}

	key, err := h.storage.Save(ctx, payload)
	if err != nil {
		logrus.WithError(err).Error("failed to store backup archive")
		respondError(c, InternalError("failed to store backup"))
		return
	}

	var actorID *uint
	if current != nil {
		actorID = &current.ID
	}
	h.writeAudit(ctx, entity.AuditActionBackup, fmt.Sprintf("backup stored: %s", key), actorID)

	logrus.WithField("key", key).Info("backup archive stored")
	c.JSON(http.StatusCreated, entity.BackupResponse{Key: key})
}

// Restore loads an archive and replaces every table with its contents
// in one transaction.
func (h *HTTPHandler) Restore(c *gin.Context) {
	current := CurrentAccount(c)

	var req entity.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid restore payload"))
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		respondError(c, MissingField("key"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	payload, err := h.storage.Load(ctx, req.Key)
	if err != nil {
		logrus.WithError(err).WithField("key", req.Key).Warn("failed to load backup archive")
		respondError(c, NotFound(ErrCodeArchiveNotFound, "backup archive not found"))
		return
	}

	var data entity.BackupData
	if err := json.Unmarshal(payload, &data); err != nil {
		logrus.WithError(err).WithField("key", req.Key).Error("failed to decode backup archive")
		respondError(c, BadRequest("backup archive is not valid"))
		return
	}

	if err := h.repo.RestoreAll(ctx, &data); err != nil {
		logrus.WithError(err).WithField("key", req.Key).Error("failed to restore tables")
		respondError(c, InternalError("failed to restore backup"))
		return
	}

	var actorID *uint
	if current != nil {
		actorID = &current.ID
	}
	h.writeAudit(ctx, entity.AuditActionRestore, fmt.Sprintf("restore applied: %s", req.Key), actorID)

	logrus.WithField("key", req.Key).Info("backup archive restored")
	c.JSON(http.StatusOK, entity.RestoreResponse{
		Accounts:  len(data.Accounts),
		Books:     len(data.Books),
		Loans:     len(data.Loans),
		AuditLogs: len(data.AuditLogs),
	})
}
