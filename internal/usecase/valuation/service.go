package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// Backfiller ensures price coverage exists for a set of instruments before
// simulation begins. Implemented by the backfill coordinator.
type Backfiller interface {
	Ensure(ctx context.Context, instrumentIDs []uuid.UUID, from, to time.Time) error
}

// Service assembles position valuation histories: it groups a user's ledger
// by instrument, runs the daily simulator per instrument over the full
// history, and filters the combined snapshots to the requested window.
type Service struct {
	TransactionRepo domain.TransactionRepository
	PriceRepo       domain.PriceRepository
	InstrumentRepo  domain.InstrumentRepository
	Backfill        Backfiller

	log zerolog.Logger
}

// NewService creates a new valuation Service instance
func NewService(
	transactionRepo domain.TransactionRepository,
	priceRepo domain.PriceRepository,
	instrumentRepo domain.InstrumentRepository,
	backfill Backfiller,
	log zerolog.Logger,
) *Service {
	return &Service{
		TransactionRepo: transactionRepo,
		PriceRepo:       priceRepo,
		InstrumentRepo:  instrumentRepo,
		Backfill:        backfill,
		log:             log.With().Str("usecase", "valuation").Logger(),
	}
}

// Positions computes the daily position snapshots for every instrument the
// user has ever transacted in, restricted to [from, to] (inclusive, date
// granularity).
//
// Each instrument is simulated from its first transaction date - not from
// the caller's from - because cost basis depends on the full history; the
// window filter is a pure post-processing step. An empty ledger yields an
// empty response, not an error. Date-range validation (from <= to) is the
// caller's responsibility.
func (s *Service) Positions(ctx context.Context, userID uuid.UUID, from, to time.Time) (*domain.PositionsResponse, error) {
	from = domain.Day(from)
	to = domain.Day(to)

	transactions, err := s.TransactionRepo.ListByUser(ctx, userID, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if len(transactions) == 0 {
		return &domain.PositionsResponse{
			Snapshots:   []domain.PositionSnapshot{},
			Instruments: []*domain.Instrument{},
		}, nil
	}

	groups, order := groupByInstrument(transactions)

	// Make sure price history covers every group before simulating. The
	// coordinator fetches per instrument from its first transaction date.
	earliest := domain.Day(transactions[0].Date)
	if err := s.Backfill.Ensure(ctx, order, earliest, to); err != nil {
		return nil, fmt.Errorf("failed to backfill prices: %w", err)
	}

	instruments, err := s.InstrumentRepo.ListByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	instrumentByID := make(map[uuid.UUID]*domain.Instrument, len(instruments))
	for _, instrument := range instruments {
		instrumentByID[instrument.ID] = instrument
	}

	snapshots := []domain.PositionSnapshot{}
	for _, instrumentID := range order {
		instrument, ok := instrumentByID[instrumentID]
		if !ok {
			return nil, fmt.Errorf("ledger references unknown instrument %s", instrumentID)
		}

		group := groups[instrumentID]
		start := domain.Day(group[0].Date)

		points, err := s.PriceRepo.ListRange(ctx, instrumentID, start, to)
		if err != nil {
			return nil, fmt.Errorf("failed to list prices for %s: %w", instrument.Symbol, err)
		}

		history := simulate(instrument, group, closesByDay(points), to)
		for _, snapshot := range history {
			if snapshot.Date.Before(from) || snapshot.Date.After(to) {
				continue
			}
			snapshots = append(snapshots, snapshot)
		}
	}

	s.log.Debug().
		Str("user_id", userID.String()).
		Int("instruments", len(order)).
		Int("snapshots", len(snapshots)).
		Msg("assembled position history")

	return &domain.PositionsResponse{
		Snapshots:   snapshots,
		Instruments: instruments,
	}, nil
}

// groupByInstrument splits a date-ordered ledger into per-instrument slices,
// preserving both the relative order of each group's transactions and the
// order in which instruments first appear.
func groupByInstrument(transactions []*domain.Transaction) (map[uuid.UUID][]*domain.Transaction, []uuid.UUID) {
	groups := make(map[uuid.UUID][]*domain.Transaction)
	var order []uuid.UUID

	for _, tx := range transactions {
		if _, seen := groups[tx.InstrumentID]; !seen {
			order = append(order, tx.InstrumentID)
		}
		groups[tx.InstrumentID] = append(groups[tx.InstrumentID], tx)
	}

	return groups, order
}
