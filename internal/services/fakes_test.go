package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"eventtickets/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository. Reserve and MarkFinished
// take the mutex for their whole check-and-write, mirroring the atomicity
// the Postgres conditional updates provide.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int

	listErr     error
	setPriceErr map[string]error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:        make(map[string]*domain.Event),
		nextID:      1,
		setPriceErr: make(map[string]error),
	}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeEventRepo) ListRunning(ctx context.Context) ([]*domain.Event, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Event, 0, len(all))
	for _, e := range all {
		if e.Status == domain.EventRunning {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) SearchByTitle(ctx context.Context, query string) ([]*domain.Event, error) {
	all, _ := f.List(ctx)
	out := make([]*domain.Event, 0)
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.StartsAt != nil {
		e.StartsAt = *upd.StartsAt
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) Reserve(ctx context.Context, eventID string, quantity int) (*domain.ReservationReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.Status == domain.EventFinished {
		return nil, domain.ErrEventFinished
	}
	if e.SeatsLeft < quantity {
		return nil, domain.ErrInsufficientInventory
	}
	e.SeatsLeft -= quantity
	e.Revenue = e.Revenue.Add(e.Price.Mul(decimal.NewFromInt(int64(quantity))))
	return &domain.ReservationReceipt{
		EventID:   eventID,
		Quantity:  quantity,
		UnitPrice: e.Price,
		SeatsLeft: e.SeatsLeft,
	}, nil
}

func (f *fakeEventRepo) SetPrice(ctx context.Context, eventID string, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.setPriceErr[eventID]; err != nil {
		return err
	}
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.Price = price
	return nil
}

func (f *fakeEventRepo) MarkFinished(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = domain.EventFinished
	return nil
}

// fakeTicketRepo is an in-memory TicketRepository.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []*domain.Ticket

	createErr error
	deleteErr error

	// captured args of the last BucketedSales call
	bucketFormat string
	bucketSince  *time.Time
	buckets      []domain.BucketCount
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{}
}

func (f *fakeTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *t
	f.tickets = append(f.tickets, &copied)
	return nil
}

func (f *fakeTicketRepo) ListByEmail(ctx context.Context, email string) ([]*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Ticket, 0)
	for _, t := range f.tickets {
		if t.Email == email {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListByEvent(ctx context.Context, eventID string, since *time.Time) ([]*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Ticket, 0)
	for _, t := range f.tickets {
		if t.EventID != eventID {
			continue
		}
		if since != nil && t.BookingDate.Before(*since) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTicketRepo) BucketedSales(ctx context.Context, eventID, bucketFormat string, since *time.Time) ([]domain.BucketCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bucketFormat = bucketFormat
	f.bucketSince = since
	return f.buckets, nil
}

func (f *fakeTicketRepo) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tickets[:0]
	var deleted int64
	for _, t := range f.tickets {
		if t.EventID == eventID {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	f.tickets = kept
	return deleted, nil
}

func (f *fakeTicketRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickets)
}

// fakeViewRepo is an in-memory ViewRepository.
type fakeViewRepo struct {
	mu    sync.Mutex
	views []*domain.ViewEvent

	countErr map[string]error

	bucketFormat string
	bucketSince  *time.Time
	buckets      []domain.BucketCount
}

func newFakeViewRepo() *fakeViewRepo {
	return &fakeViewRepo{countErr: make(map[string]error)}
}

func (f *fakeViewRepo) Create(ctx context.Context, v *domain.ViewEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *v
	f.views = append(f.views, &copied)
	return nil
}

func (f *fakeViewRepo) CountByEvent(ctx context.Context, eventID string, since *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.countErr[eventID]; err != nil {
		return 0, err
	}
	var n int64
	for _, v := range f.views {
		if v.EventID != eventID {
			continue
		}
		if since != nil && v.ViewedAt.Before(*since) {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeViewRepo) addViews(eventID string, n int, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.views = append(f.views, &domain.ViewEvent{ID: fmt.Sprintf("v-%d", len(f.views)+1), EventID: eventID, ViewedAt: at})
	}
}

func (f *fakeViewRepo) Bucketed(ctx context.Context, eventID, bucketFormat string, since *time.Time) ([]domain.BucketCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bucketFormat = bucketFormat
	f.bucketSince = since
	return f.buckets, nil
}

func (f *fakeViewRepo) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.views[:0]
	var deleted int64
	for _, v := range f.views {
		if v.EventID == eventID {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	f.views = kept
	return deleted, nil
}

// fakeBuyerRepo is an in-memory BuyerRepository.
type fakeBuyerRepo struct {
	byID    map[string]*domain.Buyer
	byEmail map[string]*domain.Buyer
}

func newFakeBuyerRepo(buyers ...*domain.Buyer) *fakeBuyerRepo {
	f := &fakeBuyerRepo{
		byID:    make(map[string]*domain.Buyer),
		byEmail: make(map[string]*domain.Buyer),
	}
	for _, b := range buyers {
		f.byID[b.ID] = b
		f.byEmail[b.Email] = b
	}
	return f
}

func (f *fakeBuyerRepo) GetByID(ctx context.Context, id string) (*domain.Buyer, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBuyerRepo) GetByEmail(ctx context.Context, email string) (*domain.Buyer, error) {
	if b, ok := f.byEmail[email]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}
