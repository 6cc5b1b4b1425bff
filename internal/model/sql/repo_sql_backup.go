package sql

import (
	"biblioteca/internal/entity"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DumpAll reads every table into a single BackupData document. Soft-deleted
// rows are included so a restore reproduces the store exactly.
func (r *GormRepository) DumpAll(ctx context.Context) (*entity.BackupData, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	data := &entity.BackupData{CreatedAt: time.Now().UTC()}
	db := r.db.WithContext(ctx)

	if err := db.Order("id ASC").Find(&data.Accounts).Error; err != nil {
		return nil, fmt.Errorf("dump accounts: %w", err)
	}
	if err := db.Order("id ASC").Find(&data.Books).Error; err != nil {
		return nil, fmt.Errorf("dump books: %w", err)
	}
	if err := db.Order("id ASC").Find(&data.Loans).Error; err != nil {
		return nil, fmt.Errorf("dump loans: %w", err)
	}
	if err := db.Order("id ASC").Find(&data.AuditLogs).Error; err != nil {
		return nil, fmt.Errorf("dump audit logs: %w", err)
	}
	return data, nil
}

// RestoreAll replaces every table with the archive contents inside one
// transaction; a failure leaves the previous state intact.
func (r *GormRepository) RestoreAll(ctx context.Context, data *entity.BackupData) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if data == nil {
		return fmt.Errorf("backup data is nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&entity.DbAuditLog{}, &entity.DbLoan{}, &entity.DbAccount{}, &entity.DbBook{},
		} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}

		if len(data.Accounts) > 0 {
			if err := tx.Create(&data.Accounts).Error; err != nil {
				return fmt.Errorf("restore accounts: %w", err)
			}
		}
		if len(data.Books) > 0 {
			if err := tx.Create(&data.Books).Error; err != nil {
				return fmt.Errorf("restore books: %w", err)
			}
		}
		if len(data.Loans) > 0 {
			if err := tx.Create(&data.Loans).Error; err != nil {
				return fmt.Errorf("restore loans: %w", err)
			}
		}
		if len(data.AuditLogs) > 0 {
			if err := tx.Create(&data.AuditLogs).Error; err != nil {
				return fmt.Errorf("restore audit logs: %w", err)
			}
		}
		return nil
	})
}
