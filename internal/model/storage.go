package model

import "time"

// PortfolioRecord is the single canonical row holding the current document.
// A check constraint on id keeps the table at exactly one row.
type PortfolioRecord struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	Data         string    `gorm:"type:jsonb" json:"data"`
	LastModified time.Time `json:"last_modified"`
	ModifiedBy   string    `gorm:"type:varchar(255)" json:"modified_by"`
	Version      int64     `json:"version"`
}

func (PortfolioRecord) TableName() string {
	return "portfolio_data"
}

// PortfolioBackup is an immutable snapshot of a prior canonical document,
// written before every overwrite and on demand. Never mutated.
type PortfolioBackup struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Data         string    `gorm:"type:jsonb" json:"data"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    string    `gorm:"type:varchar(255)" json:"created_by"`
	BackupReason string    `gorm:"type:varchar(255)" json:"backup_reason"`
}

func (PortfolioBackup) TableName() string {
	return "portfolio_backups"
}

type AuditRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Action      string    `gorm:"type:varchar(50)" json:"action"`
	AdminEmail  string    `gorm:"type:varchar(255)" json:"admin_email"`
	Description string    `gorm:"type:text" json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func (AuditRecord) TableName() string {
	return "admin_audit_log"
}

// BackupInfo is the listing projection of a backup: metadata only, the
// document body is excluded to keep list payloads small.
type BackupInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	Reason    string    `json:"backup_reason"`
}

type AuditLogEntry struct {
	Action      string    `json:"action"`
	AdminEmail  string    `json:"admin_email"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Backup reason tags.
const (
	ReasonPreUpdate  = "pre_update_backup"
	ReasonPreRestore = "pre_restore_backup"
	ReasonManual     = "manual_backup"
)

// Audit action tags.
const (
	ActionUpdate       = "UPDATE"
	ActionRestore      = "RESTORE"
	ActionBackupCreate = "BACKUP_CREATE"
	ActionAuthSuccess  = "AUTH_SUCCESS"
	ActionAuthDenied   = "AUTH_DENIED"
)
