package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"eventtickets/internal/domain"
)

type buyerRepository struct {
	DB *sql.DB
}

// NewBuyerRepository returns a read-only BuyerRepository backed by Postgres.
// Buyer rows are created by the registration collaborator, not by the core.
func NewBuyerRepository(db *sql.DB) domain.BuyerRepository {
	return &buyerRepository{
		DB: db,
	}
}

func (r *buyerRepository) GetByID(ctx context.Context, id string) (*domain.Buyer, error) {
	query := `
		SELECT id, email, name, city, gender, age, created_at
		FROM buyers
		WHERE id = $1
	`
	return scanBuyer(r.DB.QueryRowContext(ctx, query, id))
}

func (r *buyerRepository) GetByEmail(ctx context.Context, email string) (*domain.Buyer, error) {
	query := `
		SELECT id, email, name, city, gender, age, created_at
		FROM buyers
		WHERE email = $1
	`
	return scanBuyer(r.DB.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func scanBuyer(row *sql.Row) (*domain.Buyer, error) {
	b := &domain.Buyer{}
	var ageNull sql.NullInt64
	err := row.Scan(&b.ID, &b.Email, &b.Name, &b.City, &b.Gender, &ageNull, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if ageNull.Valid {
		age := int(ageNull.Int64)
		b.Age = &age
	}
	return b, nil
}
