package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"eventtickets/internal/domain"
)

const eventColumns = `id, title, description, image_url, location, city, lat, lon, event_type, starts_at,
		price, price_min, price_max, seat_num, seats_left, revenue, status, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventRepository backed by Postgres. All
// inventory mutations are single conditional statements so that concurrent
// reservations serialize at the row level and can never oversell.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, image_url, location, city, lat, lon, event_type, starts_at,
			price, price_min, price_max, seat_num, seats_left, revenue, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.ImageURL, e.Location, e.City, e.Lat, e.Lon, e.Type, e.StartsAt,
		e.Price, e.PriceMin, e.PriceMax, e.SeatNum, e.SeatsLeft, e.Revenue, e.Status, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.ImageURL, &e.Location, &e.City, &e.Lat, &e.Lon, &e.Type, &e.StartsAt,
		&e.Price, &e.PriceMin, &e.PriceMax, &e.SeatNum, &e.SeatsLeft, &e.Revenue, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY created_at DESC`, eventColumns)
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListRunning(ctx context.Context) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE status = 'running' ORDER BY created_at DESC`, eventColumns)
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) SearchByTitle(ctx context.Context, search string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE title ILIKE '%%' || $1 || '%%' ORDER BY created_at DESC`, eventColumns)
	return r.queryEvents(ctx, query, search)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.City != nil {
		add("city", *upd.City)
	}
	if upd.Type != nil {
		add("event_type", *upd.Type)
	}
	if upd.Lat != nil {
		add("lat", *upd.Lat)
	}
	if upd.Lon != nil {
		add("lon", *upd.Lon)
	}
	if upd.StartsAt != nil {
		add("starts_at", *upd.StartsAt)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reserve commits the availability check, the seat decrement, and the revenue
// increment in one conditional UPDATE. The price is read inside the same
// statement, so the buyer is charged whatever price is in effect at commit.
// When no row matches, a follow-up probe distinguishes a missing event, a
// finished event, and insufficient seats.
func (r *eventRepository) Reserve(ctx context.Context, eventID string, quantity int) (*domain.ReservationReceipt, error) {
	query := `
		UPDATE events
		SET seats_left = seats_left - $2,
			revenue = revenue + price * $2,
			updated_at = NOW()
		WHERE id = $1 AND status = 'running' AND seats_left >= $2
		RETURNING price, seats_left
	`
	receipt := &domain.ReservationReceipt{EventID: eventID, Quantity: quantity}
	err := r.DB.QueryRowContext(ctx, query, eventID, quantity).Scan(&receipt.UnitPrice, &receipt.SeatsLeft)
	if err == nil {
		return receipt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var status domain.EventStatus
	probe := r.DB.QueryRowContext(ctx, `SELECT status FROM events WHERE id = $1`, eventID)
	if err := probe.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if status == domain.EventFinished {
		return nil, domain.ErrEventFinished
	}
	return nil, domain.ErrInsufficientInventory
}

func (r *eventRepository) SetPrice(ctx context.Context, eventID string, price decimal.Decimal) error {
	query := `UPDATE events SET price = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, eventID, price)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFinished is conditional on status so the transition stays one-way.
// A second call matches no row; the probe turns that into an idempotent
// success rather than ErrNotFound.
func (r *eventRepository) MarkFinished(ctx context.Context, eventID string) error {
	query := `UPDATE events SET status = 'finished', updated_at = NOW() WHERE id = $1 AND status = 'running'`
	result, err := r.DB.ExecContext(ctx, query, eventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var status domain.EventStatus
	probe := r.DB.QueryRowContext(ctx, `SELECT status FROM events WHERE id = $1`, eventID)
	if err := probe.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
