// Package storage defines the persistent backend capability set and its
// implementations. The backend is the durability source of truth: the one
// sink whose write failure fails a save.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hanzalakhan/portfolio-backend/internal/config"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

// ErrNotFound marks a missing backup id. Callers distinguish it from
// connectivity failures with errors.Is.
var ErrNotFound = errors.New("backup not found")

// Backend is the capability set every storage implementation provides.
//
// SavePortfolioData snapshots the current canonical state into a
// pre_update_backup (skipped when no prior state exists), replaces canonical
// state, then appends an UPDATE audit entry. Only a failed replace fails the
// call; backup and audit failures are logged and swallowed.
type Backend interface {
	SavePortfolioData(ctx context.Context, doc *model.PortfolioDocument, adminEmail string) error
	// GetPortfolioData returns (nil, nil) when no document has been saved
	// yet; it errors only on connectivity failures.
	GetPortfolioData(ctx context.Context) (*model.PortfolioDocument, error)
	// CreateBackup snapshots current state with reason manual_backup. A
	// missing canonical state is a no-op, not an error.
	CreateBackup(ctx context.Context, adminEmail string) error
	// RestoreFromBackup backs up current state (pre_restore_backup), writes
	// the snapshot as canonical and appends a RESTORE audit entry naming the
	// source backup. Returns ErrNotFound for an unknown id.
	RestoreFromBackup(ctx context.Context, backupID, adminEmail string) error
	GetBackups(ctx context.Context, limit int) ([]model.BackupInfo, error)
	GetAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error)
	LogChange(ctx context.Context, action, adminEmail, description string) error
	Ping(ctx context.Context) error
	Provider() string
}

// New selects a backend from configuration. An empty provider returns
// (nil, nil): no persistent backend, the facade runs in degraded mode.
func New(ctx context.Context, cfg *config.DBConfig) (Backend, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "postgres":
		return NewPostgres(cfg)
	case "mongodb":
		return NewMongo(ctx, cfg.MongoURL)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", cfg.Provider)
	}
}
