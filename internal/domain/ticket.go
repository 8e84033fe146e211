package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus is the state of a booked ticket.
type TicketStatus string

const (
	TicketBooked    TicketStatus = "booked"
	TicketCancelled TicketStatus = "cancelled"
)

// Ticket is a purchase record for an event. It snapshots the buyer's
// demographics and the unit price committed by the reservation; it never
// mutates event-owned fields retroactively.
type Ticket struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	Email       string          `json:"email"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BuyerGender string          `json:"buyer_gender,omitempty"`
	BuyerAge    *int            `json:"buyer_age,omitempty"`
	BuyerCity   string          `json:"buyer_city,omitempty"`
	Status      TicketStatus    `json:"status"`
	BookingDate time.Time       `json:"booking_date"`
}

// BucketCount is one entry of a bucketed time series: a bucket key such as
// "2025-06-01" or "14:00" and the count that fell into it.
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// SalesReport is the analytics payload for an event's sales: bucketed sold
// quantities plus the raw tickets backing them.
type SalesReport struct {
	Sales   []BucketCount `json:"sales"`
	Tickets []*Ticket     `json:"tickets"`
}

// TicketRepository defines the interface for ticket storage.
type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	ListByEmail(ctx context.Context, email string) ([]*Ticket, error)
	ListByEvent(ctx context.Context, eventID string, since *time.Time) ([]*Ticket, error)

	// BucketedSales sums sold quantities of non-cancelled tickets per time
	// bucket. bucketFormat is a to_char layout chosen by the caller.
	BucketedSales(ctx context.Context, eventID, bucketFormat string, since *time.Time) ([]BucketCount, error)

	// DeleteByEvent removes every ticket of the event and reports how many.
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
}

// BookingService orchestrates ticket purchases and ticket queries.
type BookingService interface {
	// BookTicket validates the request, reserves the seats atomically, and
	// persists the ticket with the committed unit price.
	BookTicket(ctx context.Context, email, eventID string, quantity int) (*Ticket, error)

	ListTicketsByEmail(ctx context.Context, email string) ([]*Ticket, error)
	PurgeTicketsByEvent(ctx context.Context, eventID string) (int64, error)
	EventSales(ctx context.Context, eventID, filter string) (*SalesReport, error)
}
