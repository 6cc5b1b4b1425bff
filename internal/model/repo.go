package model

import (
	"biblioteca/internal/entity"
	"context"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 账户管理
	CreateAccount(ctx context.Context, account *entity.DbAccount) error
	UpdateAccount(ctx context.Context, id uint, updates entity.AccountUpdates) error
	GetAccountByEmail(ctx context.Context, email string) (*entity.DbAccount, error)
	GetAccountByID(ctx context.Context, id uint) (*entity.DbAccount, error)
	ListAccounts(ctx context.Context, params *entity.AccountQuery) ([]entity.DbAccount, *entity.Meta, error)
	SoftDeleteAccount(ctx context.Context, id uint) error

	// 图书管理
	CreateBook(ctx context.Context, book *entity.DbBook) error
	UpdateBook(ctx context.Context, id uint, updates entity.BookUpdates) error
	GetBookByID(ctx context.Context, id uint) (*entity.DbBook, error)
	ListBooks(ctx context.Context) ([]entity.DbBook, error)
	SoftDeleteBook(ctx context.Context, id uint) error

	// 借阅管理。创建与归还各自在单个事务中配对更新库存。
	CreateLoan(ctx context.Context, loan *entity.DbLoan, loanLimit int) error
	ReturnLoan(ctx context.Context, id uint) (*entity.DbLoan, error)
	GetLoanByID(ctx context.Context, id uint) (*entity.DbLoan, error)
	ListLoans(ctx context.Context, accountID uint) ([]entity.DbLoan, error)
	CountActiveLoans(ctx context.Context, accountID uint) (int64, error)

	// 审计日志
	CreateAuditLog(ctx context.Context, log *entity.DbAuditLog) error
	ListAuditLogs(ctx context.Context, accountID uint, limit int) ([]entity.DbAuditLog, error)

	// 备份与恢复
	DumpAll(ctx context.Context) (*entity.BackupData, error)
	RestoreAll(ctx context.Context, data *entity.BackupData) error
}
