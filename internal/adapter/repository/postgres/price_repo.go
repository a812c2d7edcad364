package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// priceRepository implements domain.PriceRepository
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *DB) domain.PriceRepository {
	return &priceRepository{db: db}
}

// ListRange retrieves all price points for an instrument within [from, to],
// ordered by date ascending
func (r *priceRepository) ListRange(ctx context.Context, instrumentID uuid.UUID, from, to time.Time) ([]*domain.PricePoint, error) {
	query := `
		SELECT instrument_id, date, close_price
		FROM daily_prices
		WHERE instrument_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, instrumentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var points []*domain.PricePoint
	for rows.Next() {
		var point domain.PricePoint
		var closeStr string

		if err := rows.Scan(&point.InstrumentID, &point.Date, &closeStr); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}

		point.Date = domain.Day(point.Date)
		if point.Close, err = decimal.NewFromString(closeStr); err != nil {
			return nil, fmt.Errorf("failed to parse close_price: %w", err)
		}

		points = append(points, &point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prices: %w", err)
	}

	return points, nil
}

// LatestDate returns the most recent stored price date for an instrument
func (r *priceRepository) LatestDate(ctx context.Context, instrumentID uuid.UUID) (time.Time, bool, error) {
	query := `
		SELECT date
		FROM daily_prices
		WHERE instrument_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var date time.Time
	err := r.db.QueryRowContext(ctx, query, instrumentID).Scan(&date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get latest price date: %w", err)
	}

	return domain.Day(date), true, nil
}

// UpsertBatch inserts price points inside a single database transaction,
// replacing any existing point for the same (instrument, date)
func (r *priceRepository) UpsertBatch(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO daily_prices (instrument_id, date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (instrument_id, date) DO UPDATE SET close_price = EXCLUDED.close_price
	`

	for _, point := range points {
		if _, err := dbTx.ExecContext(ctx, query,
			point.InstrumentID,
			point.Date,
			point.Close.String(),
		); err != nil {
			return fmt.Errorf("failed to upsert price point: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price batch: %w", err)
	}

	return nil
}
