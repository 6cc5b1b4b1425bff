package dto

// BackupResponse reports where the archive was stored.
type BackupResponse struct {
	Key string `json:"key"`
}

// RestoreRequest names the archive to load.
type RestoreRequest struct {
	Key string `json:"key" binding:"required"`
}

// RestoreResponse reports how many rows each table received.
type RestoreResponse struct {
	Accounts  int `json:"accounts"`
	Books     int `json:"books"`
	Loans     int `json:"loans"`
	AuditLogs int `json:"audit_logs"`
}
