package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionRepository defines the interface for ledger persistence operations
type TransactionRepository interface {
	// Create creates a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// ListByUser retrieves all transactions for a user with date <= until,
	// ordered by date ascending. Same-day transactions keep their insertion
	// order; the valuation engine relies on this stability.
	ListByUser(ctx context.Context, userID uuid.UUID, until time.Time) ([]*Transaction, error)
}

// PriceRepository defines the interface for daily price persistence operations
type PriceRepository interface {
	// ListRange retrieves all price points for an instrument with
	// from <= date <= to, ordered by date ascending.
	ListRange(ctx context.Context, instrumentID uuid.UUID, from, to time.Time) ([]*PricePoint, error)

	// LatestDate returns the most recent stored price date for an instrument.
	// The second return value is false when no price exists at all.
	LatestDate(ctx context.Context, instrumentID uuid.UUID) (time.Time, bool, error)

	// UpsertBatch inserts price points, replacing any existing point for the
	// same (instrument, date).
	UpsertBatch(ctx context.Context, points []*PricePoint) error
}

// InstrumentRepository defines the interface for instrument persistence operations
type InstrumentRepository interface {
	// GetByID retrieves an instrument by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Instrument, error)

	// ListByIDs retrieves the instruments for the given IDs
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Instrument, error)

	// List retrieves all instruments
	List(ctx context.Context) ([]*Instrument, error)
}
