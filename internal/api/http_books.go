package api

import (
	"biblioteca/internal/entity"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (h *HTTPHandler) ListBooks(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	books, err := h.repo.ListBooks(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list books")
		respondError(c, InternalError("failed to list books"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (h *HTTPHandler) CreateBook(c *gin.Context) {
	var req entity.BookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid book payload"))
		return
	}

	book := &entity.DbBook{
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		Quantity: req.Quantity,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateBook(ctx, book); err != nil {
		logrus.WithError(err).Error("failed to create book")
		respondError(c, InternalError("failed to create book"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"book": book})
}

func (h *HTTPHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.BookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, BadRequest("invalid book payload"))
		return
	}

	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	updates := entity.BookUpdates{
		Title:    &title,
		Author:   &author,
		Quantity: &req.Quantity,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.repo.GetBookByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, NotFound(ErrCodeBookNotFound, "book not found"))
			return
		}
		logrus.WithError(err).WithField("book_id", id).Error("failed to load book")
		respondError(c, InternalError("failed to update book"))
		return
	}

	if err := h.repo.UpdateBook(ctx, id, updates); err != nil {
		logrus.WithError(err).WithField("book_id", id).Error("failed to update book")
		respondError(c, InternalError("failed to update book"))
		return
	}

	book, err := h.repo.GetBookByID(ctx, id)
	if err != nil {
		logrus.WithError(err).WithField("book_id", id).Error("failed to reload book")
		respondError(c, InternalError("failed to update book"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

func (h *HTTPHandler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.repo.GetBookByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, NotFound(ErrCodeBookNotFound, "book not found"))
			return
		}
		logrus.WithError(err).WithField("book_id", id).Error("failed to load book")
		respondError(c, InternalError("failed to delete book"))
		return
	}

	if err := h.repo.SoftDeleteBook(ctx, id); err != nil {
		logrus.WithError(err).WithField("book_id", id).Error("failed to delete book")
		respondError(c, InternalError("failed to delete book"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}
