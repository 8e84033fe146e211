package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eventtickets/internal/domain"
)

const ticketColumns = `id, event_id, email, quantity, unit_price, buyer_gender, buyer_age, buyer_city, status, booking_date`

type ticketRepository struct {
	DB *sql.DB
}

// NewTicketRepository returns a TicketRepository backed by Postgres.
func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (id, event_id, email, quantity, unit_price, buyer_gender, buyer_age, buyer_city, status, booking_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.EventID, t.Email, t.Quantity, t.UnitPrice, t.BuyerGender, t.BuyerAge, t.BuyerCity, t.Status, t.BookingDate,
	)
	return err
}

func scanTicket(row interface{ Scan(...any) error }) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var ageNull sql.NullInt64
	err := row.Scan(
		&t.ID, &t.EventID, &t.Email, &t.Quantity, &t.UnitPrice,
		&t.BuyerGender, &ageNull, &t.BuyerCity, &t.Status, &t.BookingDate,
	)
	if err != nil {
		return nil, err
	}
	if ageNull.Valid {
		age := int(ageNull.Int64)
		t.BuyerAge = &age
	}
	return t, nil
}

func (r *ticketRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE email = $1 ORDER BY booking_date DESC`, ticketColumns)
	return r.queryTickets(ctx, query, email)
}

func (r *ticketRepository) ListByEvent(ctx context.Context, eventID string, since *time.Time) ([]*domain.Ticket, error) {
	if since != nil {
		query := fmt.Sprintf(`SELECT %s FROM tickets WHERE event_id = $1 AND booking_date >= $2 ORDER BY booking_date DESC`, ticketColumns)
		return r.queryTickets(ctx, query, eventID, *since)
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE event_id = $1 ORDER BY booking_date DESC`, ticketColumns)
	return r.queryTickets(ctx, query, eventID)
}

func (r *ticketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) BucketedSales(ctx context.Context, eventID, bucketFormat string, since *time.Time) ([]domain.BucketCount, error) {
	args := []any{eventID, bucketFormat}
	where := `event_id = $1 AND status <> 'cancelled'`
	if since != nil {
		where += ` AND booking_date >= $3`
		args = append(args, *since)
	}
	query := fmt.Sprintf(`
		SELECT to_char(booking_date, $2) AS bucket, SUM(quantity)::int AS count
		FROM tickets
		WHERE %s
		GROUP BY bucket
		ORDER BY bucket
	`, where)
	return queryBuckets(ctx, r.DB, query, args...)
}

func (r *ticketRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	query := `DELETE FROM tickets WHERE event_id = $1`
	result, err := r.DB.ExecContext(ctx, query, eventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// queryBuckets runs a grouped count query and scans (bucket, count) pairs.
// Shared by ticket and view repositories.
func queryBuckets(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.BucketCount, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	buckets := make([]domain.BucketCount, 0)
	for rows.Next() {
		var b domain.BucketCount
		if err := rows.Scan(&b.Bucket, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
