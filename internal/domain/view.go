package domain

import (
	"context"
	"time"
)

// ViewEvent is one recorded view of an event's page. The log is append-only;
// views are never updated or deleted individually.
type ViewEvent struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	ViewerID     *string   `json:"viewer_id,omitempty"`
	ViewerGender string    `json:"viewer_gender,omitempty"`
	ViewerCity   string    `json:"viewer_city,omitempty"`
	ViewedAt     time.Time `json:"viewed_at"`
}

// ViewRepository defines the interface for the append-only view log.
type ViewRepository interface {
	Create(ctx context.Context, view *ViewEvent) error

	// CountByEvent returns the cumulative view count since creation,
	// optionally restricted to views at or after since.
	CountByEvent(ctx context.Context, eventID string, since *time.Time) (int64, error)

	// Bucketed groups view counts per time bucket. bucketFormat is a to_char
	// layout chosen by the caller.
	Bucketed(ctx context.Context, eventID, bucketFormat string, since *time.Time) ([]BucketCount, error)

	// DeleteByEvent removes the event's view log when the event is deleted.
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
}

// TrackingService records demand signals and serves bucketed view analytics.
type TrackingService interface {
	// TrackView appends a view. viewerID may be empty for anonymous views;
	// when set, the buyer must exist and their demographics are snapshotted.
	TrackView(ctx context.Context, eventID, viewerID string) (*ViewEvent, error)

	// EventViews returns bucketed view counts for filter day|week|month|all.
	EventViews(ctx context.Context, eventID, filter string) ([]BucketCount, error)
}
