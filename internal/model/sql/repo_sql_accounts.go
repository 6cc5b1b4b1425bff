package sql

import (
	"biblioteca/internal/entity"
	"context"
	"fmt"
	"strings"
	"time"
)

// CreateAccount persists a new account record.
func (r *GormRepository) CreateAccount(ctx context.Context, account *entity.DbAccount) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if account == nil {
		return fmt.Errorf("account is nil")
	}
	return r.db.WithContext(ctx).Create(account).Error
}

// UpdateAccount updates an existing account entry.
func (r *GormRepository) UpdateAccount(ctx context.Context, id uint, updates entity.AccountUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid account id")
	}
	values := updates.ToMap()
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbAccount{}).Where("id = ?", id).Updates(values).Error
}

// GetAccountByEmail loads a non-deleted account by email.
func (r *GormRepository) GetAccountByEmail(ctx context.Context, email string) (*entity.DbAccount, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is empty")
	}

	var account entity.DbAccount
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND deleted = ?", strings.ToLower(trimmed), false).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByID loads a non-deleted account by ID.
func (r *GormRepository) GetAccountByID(ctx context.Context, id uint) (*entity.DbAccount, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid account id")
	}
	var account entity.DbAccount
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts returns paginated, non-deleted accounts.
func (r *GormRepository) ListAccounts(ctx context.Context, params *entity.AccountQuery) ([]entity.DbAccount, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbAccount{}).Where("deleted = ?", false)
	if params != nil {
		if trimmed := strings.TrimSpace(params.Kind); trimmed != "" {
			query = query.Where("kind = ?", trimmed)
		}
		if trimmed := strings.TrimSpace(params.Status); trimmed != "" {
			query = query.Where("status = ?", trimmed)
		}
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR registration_no LIKE ?", kw, kw, kw)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page := 1
	pageSize := 20
	if params != nil {
		if params.Page > 0 {
			page = int(params.Page)
		}
		if params.PageSize > 0 {
			pageSize = int(params.PageSize)
		}
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var accounts []entity.DbAccount
	if err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&accounts).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return accounts, meta, nil
}

// SoftDeleteAccount marks an account as deleted, locked and inactive.
// Records are never physically removed.
func (r *GormRepository) SoftDeleteAccount(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid account id")
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&entity.DbAccount{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted":    true,
		"deleted_at": now,
		"status":     entity.AccountStatusInactive,
		"locked":     true,
	}).Error
}
