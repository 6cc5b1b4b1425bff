package entity

// Re-export common types from the common package so callers only import
// the entity package.

import (
	"biblioteca/internal/entity/common"
	"biblioteca/internal/entity/db"
)

// Type aliases for common types
type Meta = common.Meta
type BaseParams = common.BaseParams

// Database models
type DbAccount = db.Account
type DbBook = db.Book
type DbLoan = db.Loan
type DbAuditLog = db.AuditLog

// Constants
const (
	AccountKindStudent = db.AccountKindStudent
	AccountKindStaff   = db.AccountKindStaff

	AccountStatusInactive = db.AccountStatusInactive
	AccountStatusActive   = db.AccountStatusActive

	AccessLevelUser      = db.AccessLevelUser
	AccessLevelLibrarian = db.AccessLevelLibrarian
	AccessLevelAdmin     = db.AccessLevelAdmin

	AuditActionRegister       = db.AuditActionRegister
	AuditActionActivate       = db.AuditActionActivate
	AuditActionLogin          = db.AuditActionLogin
	AuditActionLoginFailed    = db.AuditActionLoginFailed
	AuditActionLocked         = db.AuditActionLocked
	AuditActionUnlocked       = db.AuditActionUnlocked
	AuditActionRecoverySent   = db.AuditActionRecoverySent
	AuditActionPasswordReset  = db.AuditActionPasswordReset
	AuditActionPasswordChange = db.AuditActionPasswordChange
	AuditActionProfileUpdate  = db.AuditActionProfileUpdate
	AuditActionAccountDelete  = db.AuditActionAccountDelete
	AuditActionBackup         = db.AuditActionBackup
	AuditActionRestore        = db.AuditActionRestore
)
