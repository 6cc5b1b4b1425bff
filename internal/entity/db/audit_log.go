package db

import "time"

// Audit log action tags. Rows are append-only.
const (
	AuditActionRegister       = "REGISTER"
	AuditActionActivate       = "ACTIVATE"
	AuditActionLogin          = "LOGIN"
	AuditActionLoginFailed    = "LOGIN_FAILED"
	AuditActionLocked         = "ACCOUNT_LOCKED"
	AuditActionUnlocked       = "ACCOUNT_UNLOCKED"
	AuditActionRecoverySent   = "RECOVERY_REQUESTED"
	AuditActionPasswordReset  = "PASSWORD_RESET"
	AuditActionPasswordChange = "PASSWORD_CHANGED"
	AuditActionProfileUpdate  = "PROFILE_UPDATED"
	AuditActionAccountDelete  = "ACCOUNT_DELETED"
	AuditActionBackup         = "BACKUP"
	AuditActionRestore        = "RESTORE"
)

// AuditLog 表示一条审计日志。
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Action    string    `gorm:"column:action;type:varchar(50);index;not null" json:"action"`
	Details   string    `gorm:"column:details;type:varchar(500)" json:"details"`
	AccountID *uint     `gorm:"column:account_id;index" json:"account_id,omitempty"`
}

// TableName 指定表名。
func (AuditLog) TableName() string {
	return "audit_logs"
}
