package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus is the lifecycle state of an event. The only transition is
// running -> finished and it is one-way.
type EventStatus string

const (
	EventRunning  EventStatus = "running"
	EventFinished EventStatus = "finished"
)

// Event represents a ticketed event with a finite seat pool and a listed
// price that the pricing engine moves between PriceMin and PriceMax.
// SeatsLeft, Revenue, Price, and Status are only ever mutated through the
// repository's atomic operations.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Location    string          `json:"location"`
	City        string          `json:"city"`
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	Type        string          `json:"type"`
	StartsAt    time.Time       `json:"starts_at"`
	Price       decimal.Decimal `json:"price"`
	PriceMin    decimal.Decimal `json:"price_min"`
	PriceMax    decimal.Decimal `json:"price_max"`
	SeatNum     int             `json:"seat_num"`
	SeatsLeft   int             `json:"seats_left"`
	Revenue     decimal.Decimal `json:"revenue"`
	Status      EventStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EventUpdate holds the optional fields of a partial event update. Nil
// fields are left unchanged. Inventory and pricing fields are deliberately
// absent; those move only through Reserve, SetPrice, and MarkFinished.
type EventUpdate struct {
	Title       *string
	Description *string
	ImageURL    *string
	Location    *string
	City        *string
	Type        *string
	Lat         *float64
	Lon         *float64
	StartsAt    *time.Time
}

// ReservationReceipt reports the outcome of a committed reservation:
// the unit price in effect at commit and the seats left afterwards.
type ReservationReceipt struct {
	EventID   string          `json:"event_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SeatsLeft int             `json:"seats_left"`
}

// EventRepository defines the interface for event storage, including the
// inventory ledger operations. Reserve, SetPrice, and MarkFinished must be
// atomic at the storage layer; a reservation never observes a torn price and
// never commits against a finished event.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListRunning(ctx context.Context) ([]*Event, error)
	SearchByTitle(ctx context.Context, query string) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error

	// Reserve checks availability and decrements seats_left as one indivisible
	// operation, incrementing revenue by price*quantity in the same step.
	// Fails with ErrNotFound, ErrEventFinished, or ErrInsufficientInventory.
	Reserve(ctx context.Context, eventID string, quantity int) (*ReservationReceipt, error)

	// SetPrice atomically overwrites the listed price.
	SetPrice(ctx context.Context, eventID string, price decimal.Decimal) error

	// MarkFinished performs the one-way running -> finished transition.
	// Calling it on an already finished event is a no-op success.
	MarkFinished(ctx context.Context, eventID string) error
}

// EventService defines event lifecycle and catalog operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context) ([]*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	UpdateEvent(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	SearchEvents(ctx context.Context, query string) ([]*Event, error)

	// FinishEvent marks the event finished and, when purging is enabled,
	// deletes its tickets. Returns the event as stored after the transition.
	FinishEvent(ctx context.Context, id string) (*Event, error)

	// DeleteEvent removes the event together with its tickets and views.
	DeleteEvent(ctx context.Context, id string) error
}
