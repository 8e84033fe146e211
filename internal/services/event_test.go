package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventtickets/internal/clock"
	"eventtickets/internal/domain"
)

func newEventFixture(t0 time.Time, purge bool) (*fakeEventRepo, *fakeTicketRepo, *fakeViewRepo, domain.EventService) {
	events := newFakeEventRepo()
	tickets := newFakeTicketRepo()
	views := newFakeViewRepo()
	svc := NewEventService(events, tickets, views, clock.NewFixed(t0), testLogger(), purge, testTimeout)
	return events, tickets, views, svc
}

func validEvent(t0 time.Time) *domain.Event {
	return &domain.Event{
		Title:       "City Derby",
		Description: "Season opener",
		Location:    "North Stadium",
		City:        "Porto",
		Type:        "sport",
		StartsAt:    t0.Add(72 * time.Hour),
		Price:       dec("50"),
		PriceMin:    dec("40"),
		PriceMax:    dec("80"),
		SeatNum:     500,
	}
}

func TestCreateEvent_SetsInventoryDefaults(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	_, _, _, svc := newEventFixture(t0, true)

	ev := validEvent(t0)
	// Client-supplied inventory state must be overwritten.
	ev.SeatsLeft = 3
	ev.Revenue = dec("999")
	ev.Status = domain.EventFinished

	require.NoError(t, svc.CreateEvent(ctx, ev))

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 500, ev.SeatsLeft)
	assert.True(t, ev.Revenue.IsZero())
	assert.Equal(t, domain.EventRunning, ev.Status)
	assert.Equal(t, t0, ev.CreatedAt)
	assert.Equal(t, t0, ev.UpdatedAt)
}

func TestCreateEvent_Validation(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	_, _, _, svc := newEventFixture(t0, true)

	tests := []struct {
		name   string
		mutate func(*domain.Event)
	}{
		{name: "missing title", mutate: func(e *domain.Event) { e.Title = "" }},
		{name: "missing city", mutate: func(e *domain.Event) { e.City = "" }},
		{name: "zero seats", mutate: func(e *domain.Event) { e.SeatNum = 0 }},
		{name: "zero price", mutate: func(e *domain.Event) { e.Price = decimal.Zero }},
		{name: "inverted bounds", mutate: func(e *domain.Event) { e.PriceMin = dec("90") }},
		{name: "price above max", mutate: func(e *domain.Event) { e.Price = dec("81") }},
		{name: "price below min", mutate: func(e *domain.Event) { e.Price = dec("39") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent(t0)
			tt.mutate(ev)
			err := svc.CreateEvent(ctx, ev)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestFinishEvent_PurgesTickets(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	events, tickets, _, svc := newEventFixture(t0, true)

	ev := events.add(&domain.Event{
		Title:     "Closing Act",
		Price:     dec("50"),
		SeatNum:   100,
		SeatsLeft: 60,
		Revenue:   dec("2000"),
		Status:    domain.EventRunning,
	})
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{ID: "t-1", EventID: ev.ID, Email: "a@b.com", Quantity: 2}))
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{ID: "t-2", EventID: "ev-other", Email: "a@b.com", Quantity: 1}))

	finished, err := svc.FinishEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventFinished, finished.Status)

	// Only the finished event's tickets are purged.
	assert.Equal(t, 1, tickets.count())

	// Reservations after the transition are rejected and change nothing.
	_, err = events.Reserve(ctx, ev.ID, 1)
	require.ErrorIs(t, err, domain.ErrEventFinished)
	stored, _ := events.GetByID(ctx, ev.ID)
	assert.Equal(t, 60, stored.SeatsLeft)
}

func TestFinishEvent_PurgeDisabled(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	events, tickets, _, svc := newEventFixture(t0, false)

	ev := events.add(&domain.Event{
		Title:     "Archive Me",
		Price:     dec("50"),
		SeatNum:   100,
		SeatsLeft: 60,
		Revenue:   dec("2000"),
		Status:    domain.EventRunning,
	})
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{ID: "t-1", EventID: ev.ID, Email: "a@b.com", Quantity: 2}))

	finished, err := svc.FinishEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventFinished, finished.Status)
	assert.Equal(t, 1, tickets.count())
}

func TestFinishEvent_NotFound(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	_, _, _, svc := newEventFixture(t0, true)

	_, err := svc.FinishEvent(ctx, "ev-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteEvent_RemovesTicketsAndViews(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	events, tickets, views, svc := newEventFixture(t0, true)

	ev := events.add(&domain.Event{
		Title:     "Gone Soon",
		Price:     dec("50"),
		SeatNum:   100,
		SeatsLeft: 100,
		Revenue:   decimal.Zero,
		Status:    domain.EventRunning,
	})
	require.NoError(t, tickets.Create(ctx, &domain.Ticket{ID: "t-1", EventID: ev.ID, Email: "a@b.com", Quantity: 1}))
	views.addViews(ev.ID, 4, t0)

	require.NoError(t, svc.DeleteEvent(ctx, ev.ID))

	_, err := events.GetByID(ctx, ev.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, tickets.count())
	count, err := views.CountByEvent(ctx, ev.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchEvents(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	events, _, _, svc := newEventFixture(t0, true)

	events.add(&domain.Event{Title: "Summer Jazz Festival", Status: domain.EventRunning})
	events.add(&domain.Event{Title: "Winter Gala", Status: domain.EventRunning})

	got, err := svc.SearchEvents(ctx, "jazz")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Summer Jazz Festival", got[0].Title)

	_, err = svc.SearchEvents(ctx, "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
