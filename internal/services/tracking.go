package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventtickets/internal/clock"
	"eventtickets/internal/domain"
)

// Bucket layouts for to_char. Hourly buckets render as "14:00", daily
// buckets as "2025-06-01", matching the source system's series keys.
const (
	bucketHourly = "HH24:00"
	bucketDaily  = "YYYY-MM-DD"
)

// bucketWindow maps an analytics filter to a to_char bucket layout and the
// start of the reporting window. An empty or "all" filter means all time.
func bucketWindow(now time.Time, filter string) (string, *time.Time, error) {
	switch filter {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return bucketHourly, &start, nil
	case "week":
		start := now.AddDate(0, 0, -7)
		return bucketDaily, &start, nil
	case "month":
		start := now.AddDate(0, 0, -30)
		return bucketDaily, &start, nil
	case "", "all":
		return bucketDaily, nil, nil
	}
	return "", nil, domain.NewValidationError("filter must be one of day, week, month, all")
}

type trackingService struct {
	eventRepo      domain.EventRepository
	viewRepo       domain.ViewRepository
	buyerRepo      domain.BuyerRepository
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewTrackingService wires the demand-signal service.
func NewTrackingService(eventRepo domain.EventRepository,
	viewRepo domain.ViewRepository,
	buyerRepo domain.BuyerRepository,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.TrackingService {
	return &trackingService{
		eventRepo:      eventRepo,
		viewRepo:       viewRepo,
		buyerRepo:      buyerRepo,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *trackingService) TrackView(ctx context.Context, eventID, viewerID string) (*domain.ViewEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if eventID == "" {
		return nil, domain.NewValidationError("event id is required")
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	view := &domain.ViewEvent{
		ID:       uuid.NewString(),
		EventID:  eventID,
		ViewedAt: s.clock.Now(),
	}
	if viewerID != "" {
		buyer, err := s.buyerRepo.GetByID(ctx, viewerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get buyer: %w", err)
		}
		view.ViewerID = &buyer.ID
		view.ViewerGender = buyer.Gender
		view.ViewerCity = buyer.City
	}

	if err := s.viewRepo.Create(ctx, view); err != nil {
		return nil, fmt.Errorf("record view: %w", err)
	}
	return view, nil
}

func (s *trackingService) EventViews(ctx context.Context, eventID, filter string) ([]domain.BucketCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	format, since, err := bucketWindow(s.clock.Now(), filter)
	if err != nil {
		return nil, err
	}
	views, err := s.viewRepo.Bucketed(ctx, eventID, format, since)
	if err != nil {
		return nil, fmt.Errorf("bucketed views: %w", err)
	}
	return views, nil
}
