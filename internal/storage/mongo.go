package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

const (
	mongoDatabase  = "portfolio_data"
	canonicalDocID = "portfolio_data"
	colPortfolio   = "portfolio"
	colBackups     = "backups"
	colAuditLog    = "audit_log"
)

// MongoBackend keeps the canonical document under a fixed _id in the
// portfolio collection, with backups and audit_log alongside.
type MongoBackend struct {
	client *mongo.Client
}

func NewMongo(ctx context.Context, url string) (*MongoBackend, error) {
	if url == "" {
		return nil, errors.New("MongoDB URL not provided")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("mongodb connection failed: %w", err)
	}
	return &MongoBackend{client: client}, nil
}

func (b *MongoBackend) Provider() string { return "mongodb" }

func (b *MongoBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}

func (b *MongoBackend) collection(name string) *mongo.Collection {
	return b.client.Database(mongoDatabase).Collection(name)
}

type mongoCanonical struct {
	ID           string    `bson:"_id"`
	Data         string    `bson:"data"`
	LastModified time.Time `bson:"lastModified"`
	ModifiedBy   string    `bson:"modifiedBy"`
	Version      int64     `bson:"version"`
}

type mongoBackup struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Data      string             `bson:"data"`
	CreatedAt time.Time          `bson:"createdAt"`
	CreatedBy string             `bson:"createdBy"`
	Reason    string             `bson:"reason"`
}

func (b *MongoBackend) current(ctx context.Context) (*mongoCanonical, error) {
	var doc mongoCanonical
	err := b.collection(colPortfolio).FindOne(ctx, bson.M{"_id": canonicalDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *MongoBackend) snapshot(ctx context.Context, current *mongoCanonical, adminEmail, reason string) error {
	_, err := b.collection(colBackups).InsertOne(ctx, mongoBackup{
		Data:      current.Data,
		CreatedAt: time.Now(),
		CreatedBy: adminEmail,
		Reason:    reason,
	})
	return err
}

func (b *MongoBackend) replace(ctx context.Context, current *mongoCanonical, doc *model.PortfolioDocument, adminEmail string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var version int64 = 1
	if current != nil {
		version = current.Version + 1
	}
	_, err = b.collection(colPortfolio).ReplaceOne(ctx,
		bson.M{"_id": canonicalDocID},
		mongoCanonical{
			ID:           canonicalDocID,
			Data:         string(payload),
			LastModified: time.Now(),
			ModifiedBy:   adminEmail,
			Version:      version,
		},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (b *MongoBackend) SavePortfolioData(ctx context.Context, doc *model.PortfolioDocument, adminEmail string) error {
	current, err := b.current(ctx)
	if err != nil {
		return err
	}

	if current != nil {
		if err := b.snapshot(ctx, current, adminEmail, model.ReasonPreUpdate); err != nil {
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

func (b *MongoBackend) GetPortfolioData(ctx context.Context) (*model.PortfolioDocument, error) {
	current, err := b.current(ctx)
	if err != nil || current == nil {
		return nil, err
	}
	var doc model.PortfolioDocument
	if err := json.Unmarshal([]byte(current.Data), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *MongoBackend) CreateBackup(ctx context.Context, adminEmail string) error {
	current, err := b.current(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	return b.snapshot(ctx, current, adminEmail, model.ReasonManual)
}

func (b *MongoBackend) RestoreFromBackup(ctx context.Context, backupID, adminEmail string) error {
	oid, err := primitive.ObjectIDFromHex(backupID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, backupID)
	}

	var backup mongoBackup
	err = b.collection(colBackups).FindOne(ctx, bson.M{"_id": oid}).Decode(&backup)
	if errors.Is(err, mongo.ErrNoDocuments) {
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
		if err := b.snapshot(ctx, current, adminEmail, model.ReasonPreRestore); err != nil {
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

func (b *MongoBackend) GetBackups(ctx context.Context, limit int) ([]model.BackupInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1, "createdAt": 1, "createdBy": 1, "reason": 1})
	cursor, err := b.collection(colBackups).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var infos []model.BackupInfo
	for cursor.Next(ctx) {
		var backup mongoBackup
		if err := cursor.Decode(&backup); err != nil {
			return nil, err
		}
		infos = append(infos, model.BackupInfo{
			ID:        backup.ID.Hex(),
			CreatedAt: backup.CreatedAt,
			CreatedBy: backup.CreatedBy,
			Reason:    backup.Reason,
		})
	}
	return infos, cursor.Err()
}

func (b *MongoBackend) GetAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := b.collection(colAuditLog).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []model.AuditLogEntry
	for cursor.Next(ctx) {
		var entry struct {
			Action      string    `bson:"action"`
			AdminEmail  string    `bson:"adminEmail"`
			Description string    `bson:"description"`
			Timestamp   time.Time `bson:"timestamp"`
		}
		if err := cursor.Decode(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, model.AuditLogEntry(entry))
	}
	return entries, cursor.Err()
}

func (b *MongoBackend) LogChange(ctx context.Context, action, adminEmail, description string) error {
	_, err := b.collection(colAuditLog).InsertOne(ctx, bson.M{
		"action":      action,
		"adminEmail":  adminEmail,
		"description": description,
		"timestamp":   time.Now(),
	})
	return err
}
