// Package content is the adjacent multi-collection store for site content
// that lives outside the portfolio document: testimonials and contact
// messages. Plain CRUD on Mongo, independent of the portfolio backend.
package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hanzalakhan/portfolio-backend/internal/model"
)

const (
	contentDatabase = "portfolio_data"
	colTestimonials = "testimonials"
	colContact      = "contact_messages"
)

var ErrNotConfigured = errors.New("content store not configured")

// Manager connects lazily on first use, like the portfolio backend.
type Manager struct {
	url string

	mu     sync.Mutex
	client *mongo.Client
}

func NewManager(url string) *Manager {
	return &Manager{url: url}
}

func (m *Manager) Configured() bool { return m != nil && m.url != "" }

func (m *Manager) connect(ctx context.Context) (*mongo.Client, error) {
	if !m.Configured() {
		return nil, ErrNotConfigured
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return m.client, nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.url))
	if err != nil {
		return nil, fmt.Errorf("content store connection failed: %w", err)
	}
	m.client = client
	return client, nil
}

func (m *Manager) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(contentDatabase).Collection(name), nil
}

func (m *Manager) CreateTestimonial(ctx context.Context, t *model.Testimonial) error {
	col, err := m.collection(ctx, colTestimonials)
	if err != nil {
		return err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	// New submissions wait for admin approval before going public.
	t.Approved = false
	_, err = col.InsertOne(ctx, t)
	return err
}

func (m *Manager) ListTestimonials(ctx context.Context, approvedOnly bool) ([]model.Testimonial, error) {
	col, err := m.collection(ctx, colTestimonials)
	if err != nil {
		return nil, err
	}
	filter := bson.M{}
	if approvedOnly {
		filter["approved"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []model.Testimonial
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetTestimonialApproval flips the public visibility flag.
func (m *Manager) SetTestimonialApproval(ctx context.Context, id string, approved bool) error {
	col, err := m.collection(ctx, colTestimonials)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"approved": approved, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("testimonial %s not found", id)
	}
	return nil
}

func (m *Manager) DeleteTestimonial(ctx context.Context, id string) error {
	col, err := m.collection(ctx, colTestimonials)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("testimonial %s not found", id)
	}
	return nil
}

func (m *Manager) CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	col, err := m.collection(ctx, colContact)
	if err != nil {
		return err
	}
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	msg.Read = false
	_, err = col.InsertOne(ctx, msg)
	return err
}

// ListContactMessages returns one page of messages, newest first, plus the
// total count so callers can build pagination.
func (m *Manager) ListContactMessages(ctx context.Context, page, limit int) ([]model.ContactMessage, int64, error) {
	col, err := m.collection(ctx, colContact)
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []model.ContactMessage
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (m *Manager) MarkContactRead(ctx context.Context, id string) error {
	col, err := m.collection(ctx, colContact)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("contact message %s not found", id)
	}
	return nil
}
