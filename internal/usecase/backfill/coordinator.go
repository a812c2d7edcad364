package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// DefaultConcurrency bounds the number of in-flight market data fetches.
// The limit exists to respect upstream rate limits and avoid connection-pool
// exhaustion.
const DefaultConcurrency = 2

// DefaultFetchTimeout bounds a single instrument fetch. The caller's context
// still cancels everything earlier if needed.
const DefaultFetchTimeout = 30 * time.Second

// PriceSource fetches daily closing quotes from an external market data
// provider. A source is used by exactly one fetch task and closed afterwards.
type PriceSource interface {
	DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]domain.Quote, error)
	Close() error
}

// SourceFactory creates an independent PriceSource per fetch task, so that
// concurrent fetches never share a connection or session.
type SourceFactory func() (PriceSource, error)

// Coordinator fills gaps in stored price history before a valuation run.
// Fetches for distinct instruments run concurrently up to a fixed bound;
// a single cancellation aborts all in-flight fetches, and the first fetch
// error cancels the rest.
type Coordinator struct {
	InstrumentRepo domain.InstrumentRepository
	PriceRepo      domain.PriceRepository

	newSource    SourceFactory
	concurrency  int
	fetchTimeout time.Duration
	log          zerolog.Logger
}

// NewCoordinator creates a new backfill Coordinator instance
func NewCoordinator(
	instrumentRepo domain.InstrumentRepository,
	priceRepo domain.PriceRepository,
	newSource SourceFactory,
	log zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		InstrumentRepo: instrumentRepo,
		PriceRepo:      priceRepo,
		newSource:      newSource,
		concurrency:    DefaultConcurrency,
		fetchTimeout:   DefaultFetchTimeout,
		log:            log.With().Str("usecase", "backfill").Logger(),
	}
}

// Ensure guarantees stored price coverage for every given instrument up to
// the to date, fetching only the missing tail of each series. It returns once
// all fetches have completed, or the first unrecoverable failure after the
// remaining fetches have been cancelled. No ordering is guaranteed between
// fetches for different instruments.
func (c *Coordinator) Ensure(ctx context.Context, instrumentIDs []uuid.UUID, from, to time.Time) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, instrumentID := range instrumentIDs {
		instrumentID := instrumentID
		g.Go(func() error {
			return c.fetchMissing(ctx, instrumentID, from, to)
		})
	}

	return g.Wait()
}

// fetchMissing fetches and stores the price range an instrument is missing,
// using its own market data session.
func (c *Coordinator) fetchMissing(ctx context.Context, instrumentID uuid.UUID, from, to time.Time) error {
	from = domain.Day(from)
	to = domain.Day(to)

	latest, found, err := c.PriceRepo.LatestDate(ctx, instrumentID)
	if err != nil {
		return fmt.Errorf("failed to probe price coverage for %s: %w", instrumentID, err)
	}
	if found && !latest.Before(to) {
		return nil // already covered
	}
	if found && latest.AddDate(0, 0, 1).After(from) {
		from = latest.AddDate(0, 0, 1)
	}

	instrument, err := c.InstrumentRepo.GetByID(ctx, instrumentID)
	if err != nil {
		return fmt.Errorf("failed to load instrument %s: %w", instrumentID, err)
	}

	source, err := c.newSource()
	if err != nil {
		return fmt.Errorf("failed to open market data source: %w", err)
	}
	defer source.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	quotes, err := source.DailyCloses(fetchCtx, instrument.Symbol, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch closes for %s: %w", instrument.Symbol, err)
	}
	if len(quotes) == 0 {
		c.log.Debug().Str("symbol", instrument.Symbol).Msg("no new quotes for range")
		return nil
	}

	points := make([]*domain.PricePoint, 0, len(quotes))
	for _, quote := range quotes {
		points = append(points, &domain.PricePoint{
			InstrumentID: instrumentID,
			Date:         domain.Day(quote.Date),
			Close:        quote.Close,
		})
	}

	if err := c.PriceRepo.UpsertBatch(ctx, points); err != nil {
		return fmt.Errorf("failed to store closes for %s: %w", instrument.Symbol, err)
	}

	c.log.Info().
		Str("symbol", instrument.Symbol).
		Int("points", len(points)).
		Msg("backfilled price history")

	return nil
}
