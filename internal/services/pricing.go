package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"eventtickets/internal/clock"
	"eventtickets/internal/domain"
)

// PricingWeights are the relative pulls of the three demand signals:
// time-to-event, seat scarcity, and observed views.
type PricingWeights struct {
	Time    float64
	Tickets float64
	Demand  float64
}

// PricingConfig configures the periodic repricing of running events.
type PricingConfig struct {
	// Interval between cycles.
	Interval time.Duration
	Weights  PricingWeights
	// ViewMultiplier scales the view count an event must accumulate per seat
	// before demand is considered saturated.
	ViewMultiplier float64
	// DampingPct caps per-cycle price movement (0.15 means +/-15%).
	DampingPct float64
	// MinDelta is the smallest price change worth committing.
	MinDelta float64
}

// DefaultPricingConfig returns the production defaults.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Interval:       time.Hour,
		Weights:        PricingWeights{Time: 0.8, Tickets: 0.6, Demand: 0.6},
		ViewMultiplier: 10,
		DampingPct:     0.15,
		MinDelta:       0.01,
	}
}

// PricingEngine periodically recomputes the listed price of every running
// event from time-to-event, availability, and view counts, writing changes
// through the event repository's atomic SetPrice. Failures are isolated per
// event; a bad event never halts the cycle or the schedule.
type PricingEngine struct {
	eventRepo domain.EventRepository
	viewRepo  domain.ViewRepository
	clock     clock.Clock
	logger    *slog.Logger
	cfg       PricingConfig

	mu      sync.Mutex
	lastRun time.Time

	stop chan struct{}
	done chan struct{}
}

// NewPricingEngine wires a pricing engine; call Start to begin scheduling.
func NewPricingEngine(eventRepo domain.EventRepository,
	viewRepo domain.ViewRepository,
	clk clock.Clock,
	logger *slog.Logger,
	cfg PricingConfig,
) *PricingEngine {
	return &PricingEngine{
		eventRepo: eventRepo,
		viewRepo:  viewRepo,
		clock:     clk,
		logger:    logger,
		cfg:       cfg,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the scheduler goroutine. One cycle runs immediately, then
// one per configured interval.
func (e *PricingEngine) Start() {
	go e.loop()
}

// Stop signals the scheduler and blocks until any in-flight cycle has
// completed, so no half-applied cycle is left behind.
func (e *PricingEngine) Stop() {
	close(e.stop)
	<-e.done
}

func (e *PricingEngine) loop() {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	e.RunCycle(context.Background())
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.RunCycle(context.Background())
		}
	}
}

// LastRun reports when the last cycle finished.
func (e *PricingEngine) LastRun() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRun
}

// RunCycle reprices every running event once. Per-event errors are logged
// and counted; the cycle always visits every event.
func (e *PricingEngine) RunCycle(ctx context.Context) {
	now := e.clock.Now()
	events, err := e.eventRepo.ListRunning(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "pricing cycle: list running events", "err", err)
		return
	}

	var updated, failed int
	for _, ev := range events {
		changed, err := e.repriceEvent(ctx, ev, now)
		if err != nil {
			failed++
			e.logger.ErrorContext(ctx, "pricing cycle: event failed", "event_id", ev.ID, "err", err)
			continue
		}
		if changed {
			updated++
		}
	}

	e.mu.Lock()
	e.lastRun = e.clock.Now()
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "pricing cycle finished",
		"events", len(events), "updated", updated, "failed", failed)
}

func (e *PricingEngine) repriceEvent(ctx context.Context, ev *domain.Event, now time.Time) (bool, error) {
	totalViews, err := e.viewRepo.CountByEvent(ctx, ev.ID, nil)
	if err != nil {
		return false, err
	}

	candidate, changed := computeCandidate(ev, totalViews, now, e.cfg)
	if !changed {
		return false, nil
	}
	if err := e.eventRepo.SetPrice(ctx, ev.ID, candidate); err != nil {
		return false, err
	}
	e.logger.InfoContext(ctx, "price adjusted",
		"event_id", ev.ID, "old", ev.Price.String(), "new", candidate.String())
	return true, nil
}

// computeCandidate derives the next price for one event. Events that have
// already started are left alone. The candidate is the current price scaled
// by the signed adjustment ratio, clamped to [price_min, price_max], then to
// the per-cycle damping band, and rounded to cents. The second return value
// is false when the resulting change is below MinDelta.
func computeCandidate(ev *domain.Event, totalViews int64, now time.Time, cfg PricingConfig) (decimal.Decimal, bool) {
	if !ev.StartsAt.After(now) {
		return ev.Price, false
	}
	window := ev.StartsAt.Sub(ev.CreatedAt)
	if window <= 0 || ev.SeatNum <= 0 {
		return ev.Price, false
	}

	timeFactor := clamp01(float64(ev.StartsAt.Sub(now)) / float64(window))
	availabilityFactor := clamp01(1 - float64(ev.SeatsLeft)/float64(ev.SeatNum))
	demandFactor := clamp01(float64(totalViews) / (float64(ev.SeatNum) * cfg.ViewMultiplier))

	w := cfg.Weights
	weightedSum := w.Time*timeFactor + w.Tickets*availabilityFactor + w.Demand*demandFactor
	avgWeight := (w.Time + w.Tickets + w.Demand) / 3
	adjustmentRatio := weightedSum - avgWeight

	candidate := ev.Price.Mul(decimal.NewFromFloat(1 + adjustmentRatio))
	if candidate.LessThan(ev.PriceMin) {
		candidate = ev.PriceMin
	}
	if candidate.GreaterThan(ev.PriceMax) {
		candidate = ev.PriceMax
	}
	candidate = candidate.Round(2)

	upper := ev.Price.Mul(decimal.NewFromFloat(1 + cfg.DampingPct))
	lower := ev.Price.Mul(decimal.NewFromFloat(1 - cfg.DampingPct))
	if candidate.GreaterThan(upper) {
		candidate = upper
	}
	if candidate.LessThan(lower) {
		candidate = lower
	}
	candidate = candidate.Round(2)

	changed := candidate.Sub(ev.Price).Abs().GreaterThan(decimal.NewFromFloat(cfg.MinDelta))
	return candidate, changed
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
