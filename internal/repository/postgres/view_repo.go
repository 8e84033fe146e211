package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eventtickets/internal/domain"
)

type viewRepository struct {
	DB *sql.DB
}

// NewViewRepository returns a ViewRepository backed by Postgres. The view
// log is append-only; rows are only removed when their event is deleted.
func NewViewRepository(db *sql.DB) domain.ViewRepository {
	return &viewRepository{
		DB: db,
	}
}

func (r *viewRepository) Create(ctx context.Context, v *domain.ViewEvent) error {
	query := `
		INSERT INTO views (id, event_id, viewer_id, viewer_gender, viewer_city, viewed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var viewerID sql.NullString
	if v.ViewerID != nil {
		viewerID = sql.NullString{String: *v.ViewerID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, v.ID, v.EventID, viewerID, v.ViewerGender, v.ViewerCity, v.ViewedAt)
	return err
}

func (r *viewRepository) CountByEvent(ctx context.Context, eventID string, since *time.Time) (int64, error) {
	var count int64
	if since != nil {
		query := `SELECT COUNT(*) FROM views WHERE event_id = $1 AND viewed_at >= $2`
		err := r.DB.QueryRowContext(ctx, query, eventID, *since).Scan(&count)
		return count, err
	}
	query := `SELECT COUNT(*) FROM views WHERE event_id = $1`
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}

func (r *viewRepository) Bucketed(ctx context.Context, eventID, bucketFormat string, since *time.Time) ([]domain.BucketCount, error) {
	args := []any{eventID, bucketFormat}
	where := `event_id = $1`
	if since != nil {
		where += ` AND viewed_at >= $3`
		args = append(args, *since)
	}
	query := fmt.Sprintf(`
		SELECT to_char(viewed_at, $2) AS bucket, COUNT(*)::int AS count
		FROM views
		WHERE %s
		GROUP BY bucket
		ORDER BY bucket
	`, where)
	return queryBuckets(ctx, r.DB, query, args...)
}

func (r *viewRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	query := `DELETE FROM views WHERE event_id = $1`
	result, err := r.DB.ExecContext(ctx, query, eventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
