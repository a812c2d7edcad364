package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, instrument_id, date, kind, amount, price_per_unit, fees)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.InstrumentID,
		tx.Date,
		string(tx.Kind),
		tx.Amount.String(),
		tx.PricePerUnit.String(),
		tx.Fees.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// ListByUser retrieves all transactions for a user with date <= until,
// ordered by date ascending. The secondary created_at ordering keeps
// same-day transactions in insertion order, which the valuation engine
// relies on.
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, until time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, instrument_id, date, kind, amount, price_per_unit, fees
		FROM transactions
		WHERE user_id = $1 AND date <= $2
		ORDER BY date ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var kind string
		var amountStr, priceStr, feesStr string

		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.InstrumentID,
			&tx.Date,
			&kind,
			&amountStr,
			&priceStr,
			&feesStr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Kind = domain.TransactionKind(kind)
		tx.Date = domain.Day(tx.Date)

		if tx.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if tx.PricePerUnit, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("failed to parse price_per_unit: %w", err)
		}
		if tx.Fees, err = decimal.NewFromString(feesStr); err != nil {
			return nil, fmt.Errorf("failed to parse fees: %w", err)
		}

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
