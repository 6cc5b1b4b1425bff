package entity

import "time"

// BackupData is the single JSON document a backup archive contains: full
// dumps of every table. Restore replaces all tables with its contents.
type BackupData struct {
	CreatedAt time.Time    `json:"created_at"`
	Accounts  []DbAccount  `json:"accounts"`
	Books     []DbBook     `json:"books"`
	Loans     []DbLoan     `json:"loans"`
	AuditLogs []DbAuditLog `json:"audit_logs"`
}
