package model

import "time"

// Testimonial lives in the adjacent content store, separate from the
// portfolio document. Only approved entries are served publicly.
type Testimonial struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Role      string    `bson:"role" json:"role"`
	Company   string    `bson:"company,omitempty" json:"company,omitempty"`
	Content   string    `bson:"content" json:"content"`
	Rating    int       `bson:"rating" json:"rating"` // 1-5 inclusive
	Approved  bool      `bson:"approved" json:"approved"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

type ContactMessage struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Subject   string    `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string    `bson:"message" json:"message"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}
