package domain

import (
	"context"
	"time"
)

// Buyer is the read model of a registered user. Registration and
// authentication are owned by an external collaborator; the core only looks
// buyers up to validate bookings and snapshot demographics.
type Buyer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Gender    string    `json:"gender"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BuyerRepository defines read-only buyer lookups.
type BuyerRepository interface {
	GetByID(ctx context.Context, id string) (*Buyer, error)
	GetByEmail(ctx context.Context, email string) (*Buyer, error)
}
