package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

// MemoryBackend implements the full backend capability set in process
// memory. It backs tests and can run the service without external
// dependencies (DATABASE_PROVIDER=memory); everything is lost on restart.
type MemoryBackend struct {
	mu        sync.Mutex
	canonical *memoryCanonical
	backups   []memoryBackup
	audit     []model.AuditLogEntry
	nextID    int64
}

type memoryCanonical struct {
	data    string
	version int64
}

type memoryBackup struct {
	id        int64
	data      string
	createdAt time.Time
	createdBy string
	reason    string
}

func NewMemory() *MemoryBackend {
	return &MemoryBackend{nextID: 1}
}

func (b *MemoryBackend) Provider() string { return "memory" }

func (b *MemoryBackend) Ping(ctx context.Context) error { return nil }

func (b *MemoryBackend) SavePortfolioData(ctx context.Context, doc *model.PortfolioDocument, adminEmail string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.canonical != nil {
		b.snapshotLocked(adminEmail, model.ReasonPreUpdate)
	}
	b.replaceLocked(string(payload))
	b.audit = append(b.audit, model.AuditLogEntry{
		Action:      model.ActionUpdate,
		AdminEmail:  adminEmail,
		Description: "Portfolio data updated",
		Timestamp:   time.Now(),
	})
	return nil
}

func (b *MemoryBackend) snapshotLocked(adminEmail, reason string) {
	b.backups = append(b.backups, memoryBackup{
		id:        b.nextID,
		data:      b.canonical.data,
		createdAt: time.Now(),
		createdBy: adminEmail,
		reason:    reason,
	})
	b.nextID++
}

func (b *MemoryBackend) replaceLocked(data string) {
	if b.canonical == nil {
		b.canonical = &memoryCanonical{data: data, version: 1}
		return
	}
	b.canonical.data = data
	b.canonical.version++
}

func (b *MemoryBackend) GetPortfolioData(ctx context.Context) (*model.PortfolioDocument, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.canonical == nil {
		return nil, nil
	}
	var doc model.PortfolioDocument
	if err := json.Unmarshal([]byte(b.canonical.data), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Version exposes the monotonic replace counter for diagnostics and tests.
func (b *MemoryBackend) Version() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.canonical == nil {
		return 0
	}
	return b.canonical.version
}

func (b *MemoryBackend) CreateBackup(ctx context.Context, adminEmail string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.canonical == nil {
		return nil
	}
	b.snapshotLocked(adminEmail, model.ReasonManual)
	return nil
}

func (b *MemoryBackend) RestoreFromBackup(ctx context.Context, backupID, adminEmail string) error {
	id, err := strconv.ParseInt(backupID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var found *memoryBackup
	for i := range b.backups {
		if b.backups[i].id == id {
			found = &b.backups[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}

	if b.canonical != nil {
		b.snapshotLocked(adminEmail, model.ReasonPreRestore)
	}
	b.replaceLocked(found.data)
	b.audit = append(b.audit, model.AuditLogEntry{
		Action:      model.ActionRestore,
		AdminEmail:  adminEmail,
		Description: fmt.Sprintf("Restored from backup %s", backupID),
		Timestamp:   time.Now(),
	})
	return nil
}

func (b *MemoryBackend) GetBackups(ctx context.Context, limit int) ([]model.BackupInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	infos := make([]model.BackupInfo, 0, limit)
	// Backups append in id order, so walk backwards for newest-first.
	for i := len(b.backups) - 1; i >= 0 && len(infos) < limit; i-- {
		backup := b.backups[i]
		infos = append(infos, model.BackupInfo{
			ID:        strconv.FormatInt(backup.id, 10),
			CreatedAt: backup.createdAt,
			CreatedBy: backup.createdBy,
			Reason:    backup.reason,
		})
	}
	return infos, nil
}

func (b *MemoryBackend) GetAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]model.AuditLogEntry, 0, limit)
	for i := len(b.audit) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, b.audit[i])
	}
	return entries, nil
}

func (b *MemoryBackend) LogChange(ctx context.Context, action, adminEmail, description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.audit = append(b.audit, model.AuditLogEntry{
		Action:      action,
		AdminEmail:  adminEmail,
		Description: description,
		Timestamp:   time.Now(),
	})
	return nil
}
