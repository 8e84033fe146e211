package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventtickets/internal/clock"
	"eventtickets/internal/domain"
)

type bookingService struct {
	eventRepo      domain.EventRepository
	ticketRepo     domain.TicketRepository
	buyerRepo      domain.BuyerRepository
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBookingService wires the booking service. The only mutation path for
// seat inventory is EventRepository.Reserve; the service never reads and
// writes seats itself.
func NewBookingService(eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	buyerRepo domain.BuyerRepository,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		eventRepo:      eventRepo,
		ticketRepo:     ticketRepo,
		buyerRepo:      buyerRepo,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// BookTicket validates the buyer, reserves the seats atomically, and
// persists the ticket with the committed unit price and a demographic
// snapshot of the buyer at booking time. Reservation failures return
// without side effects; no retry happens here.
func (s *bookingService) BookTicket(ctx context.Context, email, eventID string, quantity int) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	var msgs []string
	if email == "" {
		msgs = append(msgs, "email is required")
	}
	if eventID == "" {
		msgs = append(msgs, "event id is required")
	}
	if quantity < 1 {
		msgs = append(msgs, "quantity must be at least 1")
	}
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	buyer, err := s.buyerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get buyer: %w", err)
	}

	receipt, err := s.eventRepo.Reserve(ctx, eventID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrEventFinished),
			errors.Is(err, domain.ErrInsufficientInventory):
			return nil, err
		}
		return nil, fmt.Errorf("reserve seats: %w", err)
	}

	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		EventID:     eventID,
		Email:       email,
		Quantity:    quantity,
		UnitPrice:   receipt.UnitPrice,
		BuyerGender: buyer.Gender,
		BuyerAge:    buyer.Age,
		BuyerCity:   buyer.City,
		Status:      domain.TicketBooked,
		BookingDate: s.clock.Now(),
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		// Seats are already committed; surface the failure instead of
		// attempting a compensating write the ledger does not offer.
		s.logger.ErrorContext(ctx, "ticket persist failed after reservation",
			"event_id", eventID, "email", email, "quantity", quantity, "err", err)
		return nil, fmt.Errorf("persist ticket: %w", err)
	}

	s.logger.InfoContext(ctx, "ticket booked",
		"event_id", eventID, "quantity", quantity,
		"unit_price", receipt.UnitPrice.String(), "seats_left", receipt.SeatsLeft)
	return ticket, nil
}

func (s *bookingService) ListTicketsByEmail(ctx context.Context, email string) ([]*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}
	return s.ticketRepo.ListByEmail(ctx, email)
}

func (s *bookingService) PurgeTicketsByEvent(ctx context.Context, eventID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	deleted, err := s.ticketRepo.DeleteByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("purge tickets: %w", err)
	}
	return deleted, nil
}

// EventSales returns bucketed sold quantities plus the raw tickets for one
// event. Filter semantics match the view analytics: day buckets by hour
// since midnight, week and month bucket by day over the trailing window,
// anything else means all time.
func (s *bookingService) EventSales(ctx context.Context, eventID, filter string) (*domain.SalesReport, error) {
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

	sales, err := s.ticketRepo.BucketedSales(ctx, eventID, format, since)
	if err != nil {
		return nil, fmt.Errorf("bucketed sales: %w", err)
	}
	tickets, err := s.ticketRepo.ListByEvent(ctx, eventID, since)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return &domain.SalesReport{Sales: sales, Tickets: tickets}, nil
}
