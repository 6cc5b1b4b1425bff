package sql

import (
	"biblioteca/internal/entity"
	"context"
	"fmt"
	"time"
)

// CreateBook adds a book to the inventory.
func (r *GormRepository) CreateBook(ctx context.Context, book *entity.DbBook) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if book == nil {
		return fmt.Errorf("book is nil")
	}
	return r.db.WithContext(ctx).Create(book).Error
}

// UpdateBook updates a book's attributes.
func (r *GormRepository) UpdateBook(ctx context.Context, id uint, updates entity.BookUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid book id")
	}
	values := updates.ToMap()
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbBook{}).Where("id = ?", id).Updates(values).Error
}

// GetBookByID loads a non-deleted book by ID.
func (r *GormRepository) GetBookByID(ctx context.Context, id uint) (*entity.DbBook, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	var book entity.DbBook
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns all non-deleted books ordered by title.
func (r *GormRepository) ListBooks(ctx context.Context) ([]entity.DbBook, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var books []entity.DbBook
	if err := r.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("title ASC").
		Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// SoftDeleteBook marks a book as deleted.
func (r *GormRepository) SoftDeleteBook(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid book id")
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&entity.DbBook{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted":    true,
		"deleted_at": now,
	}).Error
}
