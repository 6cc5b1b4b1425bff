package sql

import (
	"biblioteca/internal/entity"
	"context"
	"fmt"
)

// CreateAuditLog appends an audit entry. Entries are immutable once
// written; there is no update or delete path.
func (r *GormRepository) CreateAuditLog(ctx context.Context, log *entity.DbAuditLog) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if log == nil {
		return fmt.Errorf("audit log is nil")
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// ListAuditLogs returns recent entries newest-first, optionally filtered
// by account.
func (r *GormRepository) ListAuditLogs(ctx context.Context, accountID uint, limit int) ([]entity.DbAuditLog, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&entity.DbAuditLog{}).Order("id DESC").Limit(limit)
	if accountID != 0 {
		query = query.Where("account_id = ?", accountID)
	}
	var logs []entity.DbAuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
