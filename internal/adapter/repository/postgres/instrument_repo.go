package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// instrumentRepository implements domain.InstrumentRepository
type instrumentRepository struct {
	db *DB
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(db *DB) domain.InstrumentRepository {
	return &instrumentRepository{db: db}
}

// GetByID retrieves an instrument by its ID
func (r *instrumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	query := `
		SELECT id, symbol, name, currency
		FROM instruments
		WHERE id = $1
	`

	var instrument domain.Instrument
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&instrument.ID,
		&instrument.Symbol,
		&instrument.Name,
		&instrument.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instrument %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}

	return &instrument, nil
}

// ListByIDs retrieves the instruments for the given IDs
func (r *instrumentRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Instrument, error) {
	query := `
		SELECT id, symbol, name, currency
		FROM instruments
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	return scanInstruments(rows)
}

// List retrieves all instruments
func (r *instrumentRepository) List(ctx context.Context) ([]*domain.Instrument, error) {
	query := `
		SELECT id, symbol, name, currency
		FROM instruments
		ORDER BY symbol ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	return scanInstruments(rows)
}

func scanInstruments(rows *sql.Rows) ([]*domain.Instrument, error) {
	var instruments []*domain.Instrument
	for rows.Next() {
		var instrument domain.Instrument
		if err := rows.Scan(
			&instrument.ID,
			&instrument.Symbol,
			&instrument.Name,
			&instrument.Currency,
		); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, &instrument)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instruments: %w", err)
	}

	return instruments, nil
}
