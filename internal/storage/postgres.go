package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hanzalakhan/portfolio-backend/internal/config"
	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

// canonicalID pins portfolio_data to a single row.
const canonicalID = 1

// PostgresBackend stores the document as a JSONB row plus backup and audit
// tables, migrated on connect.
type PostgresBackend struct {
	db *gorm.DB
}

func NewPostgres(cfg *config.DBConfig) (*PostgresBackend, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(&model.PortfolioRecord{}, &model.PortfolioBackup{}, &model.AuditRecord{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &PostgresBackend{db: db}, nil
}

func (b *PostgresBackend) Provider() string { return "postgres" }

func (b *PostgresBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *PostgresBackend) current(ctx context.Context) (*model.PortfolioRecord, error) {
	var record model.PortfolioRecord
	err := b.db.WithContext(ctx).First(&record, "id = ?", canonicalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (b *PostgresBackend) SavePortfolioData(ctx context.Context, doc *model.PortfolioDocument, adminEmail string) error {
	current, err := b.current(ctx)
	if err != nil {
		return err
	}

	// Snapshot prior state first. Best-effort: a failed backup must not
	// block the save itself.
	if current != nil {
		backup := model.PortfolioBackup{
			Data:         current.Data,
			CreatedAt:    time.Now(),
			CreatedBy:    adminEmail,
			BackupReason: model.ReasonPreUpdate,
		}
		if err := b.db.WithContext(ctx).Create(&backup).Error; err != nil {
			log.Printf("pre-update backup failed: %v", err)
		}
	}

	if err := b.replace(ctx, current, doc, adminEmail); err != nil {
		return err
	}

	if err := b.LogChange(ctx, model.ActionUpdate, adminEmail, "Portfolio data updated"); err != nil {
		log.Printf("audit log write failed: %v", err)
	}
	return nil
}

// replace writes doc as the canonical row, bumping the version counter.
// A failure here is fatal to the enclosing call.
func (b *PostgresBackend) replace(ctx context.Context, current *model.PortfolioRecord, doc *model.PortfolioDocument, adminEmail string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	record := model.PortfolioRecord{
		ID:           canonicalID,
		Data:         string(payload),
		LastModified: time.Now(),
		ModifiedBy:   adminEmail,
		Version:      1,
	}
	if current != nil {
		record.Version = current.Version + 1
		return b.db.WithContext(ctx).Model(&model.PortfolioRecord{}).
			Where("id = ?", canonicalID).
			Updates(map[string]any{
				"data":          record.Data,
				"last_modified": record.LastModified,
				"modified_by":   record.ModifiedBy,
				"version":       record.Version,
			}).Error
	}
	return b.db.WithContext(ctx).Create(&record).Error
}

func (b *PostgresBackend) GetPortfolioData(ctx context.Context) (*model.PortfolioDocument, error) {
	record, err := b.current(ctx)
	if err != nil || record == nil {
		return nil, err
	}
	var doc model.PortfolioDocument
	if err := json.Unmarshal([]byte(record.Data), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *PostgresBackend) CreateBackup(ctx context.Context, adminEmail string) error {
	current, err := b.current(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	backup := model.PortfolioBackup{
		Data:         current.Data,
		CreatedAt:    time.Now(),
		CreatedBy:    adminEmail,
		BackupReason: model.ReasonManual,
	}
	return b.db.WithContext(ctx).Create(&backup).Error
}

func (b *PostgresBackend) RestoreFromBackup(ctx context.Context, backupID, adminEmail string) error {
	id, err := strconv.ParseInt(backupID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}

	var backup model.PortfolioBackup
	err = b.db.WithContext(ctx).First(&backup, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}
	if err != nil {
		return err
	}

	current, err := b.current(ctx)
	if err != nil {
		return err
	}
	if current != nil {
		preRestore := model.PortfolioBackup{
			Data:         current.Data,
			CreatedAt:    time.Now(),
			CreatedBy:    adminEmail,
			BackupReason: model.ReasonPreRestore,
		}
		if err := b.db.WithContext(ctx).Create(&preRestore).Error; err != nil {
			log.Printf("pre-restore backup failed: %v", err)
		}
	}

	var doc model.PortfolioDocument
	if err := json.Unmarshal([]byte(backup.Data), &doc); err != nil {
		return err
	}
	if err := b.replace(ctx, current, &doc, adminEmail); err != nil {
		return err
	}

	if err := b.LogChange(ctx, model.ActionRestore, adminEmail, fmt.Sprintf("Restored from backup %s", backupID)); err != nil {
		log.Printf("audit log write failed: %v", err)
	}
	return nil
}

func (b *PostgresBackend) GetBackups(ctx context.Context, limit int) ([]model.BackupInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	var backups []model.PortfolioBackup
	err := b.db.WithContext(ctx).
		Select("id", "created_at", "created_by", "backup_reason").
		Order("created_at DESC").
		Limit(limit).
		Find(&backups).Error
	if err != nil {
		return nil, err
	}
	infos := make([]model.BackupInfo, 0, len(backups))
	for _, backup := range backups {
		infos = append(infos, model.BackupInfo{
			ID:        strconv.FormatInt(backup.ID, 10),
			CreatedAt: backup.CreatedAt,
			CreatedBy: backup.CreatedBy,
			Reason:    backup.BackupReason,
		})
	}
	return infos, nil
}

func (b *PostgresBackend) GetAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []model.AuditRecord
	err := b.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	entries := make([]model.AuditLogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, model.AuditLogEntry{
			Action:      r.Action,
			AdminEmail:  r.AdminEmail,
			Description: r.Description,
			Timestamp:   r.Timestamp,
		})
	}
	return entries, nil
}

func (b *PostgresBackend) LogChange(ctx context.Context, action, adminEmail, description string) error {
	record := model.AuditRecord{
		Action:      action,
		AdminEmail:  adminEmail,
		Description: description,
		Timestamp:   time.Now(),
	}
	return b.db.WithContext(ctx).Create(&record).Error
}
