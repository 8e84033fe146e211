package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"eventtickets/internal/clock"
	"eventtickets/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	ticketRepo     domain.TicketRepository
	viewRepo       domain.ViewRepository
	clock          clock.Clock
	logger         *slog.Logger
	purgeOnFinish  bool
	contextTimeout time.Duration
}

// NewEventService wires the event lifecycle service. purgeOnFinish controls
// whether finishing an event also deletes its tickets (the source system's
// destructive cascade); disable it to keep historical sales data.
func NewEventService(eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	viewRepo domain.ViewRepository,
	clk clock.Clock,
	logger *slog.Logger,
	purgeOnFinish bool,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		ticketRepo:     ticketRepo,
		viewRepo:       viewRepo,
		clock:          clk,
		logger:         logger,
		purgeOnFinish:  purgeOnFinish,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateNewEvent(event); err != nil {
		return err
	}

	now := s.clock.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.SeatsLeft = event.SeatNum
	event.Revenue = decimal.Zero
	event.Status = domain.EventRunning

	return s.eventRepo.Create(ctx, event)
}

func validateNewEvent(e *domain.Event) error {
	var msgs []string
	if e.Title == "" {
		msgs = append(msgs, "title is required")
	}
	if e.Description == "" {
		msgs = append(msgs, "description is required")
	}
	if e.Location == "" {
		msgs = append(msgs, "location is required")
	}
	if e.City == "" {
		msgs = append(msgs, "city is required")
	}
	if e.StartsAt.IsZero() {
		msgs = append(msgs, "starts_at is required")
	}
	if e.SeatNum <= 0 {
		msgs = append(msgs, "seat_num must be positive")
	}
	if !e.Price.IsPositive() {
		msgs = append(msgs, "price must be positive")
	}
	if !e.PriceMin.IsPositive() {
		msgs = append(msgs, "price_min must be positive")
	}
	if e.PriceMax.LessThan(e.PriceMin) {
		msgs = append(msgs, "price_max must not be below price_min")
	}
	if e.Price.LessThan(e.PriceMin) || e.Price.GreaterThan(e.PriceMax) {
		msgs = append(msgs, "price must be within [price_min, price_max]")
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.List(ctx)
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.eventRepo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) SearchEvents(ctx context.Context, query string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if query == "" {
		return nil, domain.NewValidationError("search query is required")
	}
	return s.eventRepo.SearchByTitle(ctx, query)
}

// FinishEvent performs the one-way running -> finished transition. The
// transition commits before the purge; a failed purge leaves the event
// finished and is reported to the caller.
func (s *eventService) FinishEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.MarkFinished(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark finished: %w", err)
	}

	if s.purgeOnFinish {
		deleted, err := s.ticketRepo.DeleteByEvent(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("purge tickets: %w", err)
		}
		s.logger.InfoContext(ctx, "event finished, tickets purged", "event_id", id, "deleted", deleted)
	} else {
		s.logger.InfoContext(ctx, "event finished", "event_id", id)
	}

	return s.eventRepo.GetByID(ctx, id)
}

// DeleteEvent removes the event record together with its tickets and views
// so nothing is left referencing it.
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ticketRepo.DeleteByEvent(ctx, id); err != nil {
		return fmt.Errorf("delete tickets: %w", err)
	}
	if _, err := s.viewRepo.DeleteByEvent(ctx, id); err != nil {
		return fmt.Errorf("delete views: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
