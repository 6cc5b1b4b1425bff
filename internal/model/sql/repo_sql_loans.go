package sql

import (
	"biblioteca/internal/entity"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// CreateLoan registers a loan and decrements the book's quantity inside a
// single transaction. The guarded UPDATE keeps concurrent loan creation
// from overselling a zero-stock book: the decrement only applies while
// quantity > 0, and a miss rolls the loan back.
func (r *GormRepository) CreateLoan(ctx context.Context, loan *entity.DbLoan, loanLimit int) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if loan == nil {
		return fmt.Errorf("loan is nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if loanLimit > 0 {
			var active int64
			if err := tx.Model(&entity.DbLoan{}).
				Where("account_id = ? AND returned = ?", loan.AccountID, false).
				Count(&active).Error; err != nil {
				return err
			}
			if active >= int64(loanLimit) {
				return entity.ErrLoanLimitReached
			}
		}

		// A missing book is ErrRecordNotFound, not "unavailable".
		var book entity.DbBook
		if err := tx.Where("id = ? AND deleted = ?", loan.BookID, false).First(&book).Error; err != nil {
			return err
		}

		result := tx.Model(&entity.DbBook{}).
			Where("id = ? AND deleted = ? AND quantity > 0", loan.BookID, false).
			UpdateColumn("quantity", gorm.Expr("quantity - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrBookUnavailable
		}

		return tx.Create(loan).Error
	})
}

// ReturnLoan marks a loan returned and increments the book's quantity, in
// the same transaction so the two can never disagree. Returning twice
// fails with ErrLoanAlreadyReturned and leaves the quantity untouched.
func (r *GormRepository) ReturnLoan(ctx context.Context, id uint) (*entity.DbLoan, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid loan id")
	}

	var loan entity.DbLoan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loan, id).Error; err != nil {
			return err
		}
		if loan.Returned {
			return entity.ErrLoanAlreadyReturned
		}

		// Guarded like the decrement in CreateLoan: two concurrent returns
		// both read returned=false, so only the flip that actually matches
		// the unreturned row may increment the quantity.
		result := tx.Model(&entity.DbLoan{}).
			Where("id = ? AND returned = ?", loan.ID, false).
			UpdateColumn("returned", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrLoanAlreadyReturned
		}
		loan.Returned = true

		return tx.Model(&entity.DbBook{}).
			Where("id = ?", loan.BookID).
			UpdateColumn("quantity", gorm.Expr("quantity + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetLoanByID loads a loan with its account and book preloaded.
func (r *GormRepository) GetLoanByID(ctx context.Context, id uint) (*entity.DbLoan, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid loan id")
	}
	var loan entity.DbLoan
	if err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Book").
		First(&loan, id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListLoans returns loans newest-first. A zero accountID lists all loans.
func (r *GormRepository) ListLoans(ctx context.Context, accountID uint) ([]entity.DbLoan, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	query := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Book").
		Order("loaned_at DESC")
	if accountID != 0 {
		query = query.Where("account_id = ?", accountID)
	}
	var loans []entity.DbLoan
	if err := query.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// CountActiveLoans counts an account's unreturned loans.
func (r *GormRepository) CountActiveLoans(ctx context.Context, accountID uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbLoan{}).
		Where("account_id = ? AND returned = ?", accountID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
