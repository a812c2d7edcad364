package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the type of investment transaction
type TransactionKind string

const (
	TransactionKindBuy      TransactionKind = "BUY"
	TransactionKindSell     TransactionKind = "SELL"
	TransactionKindDividend TransactionKind = "DIVIDEND"
)

// Transaction represents a single entry in a user's investment ledger.
// For BUY and SELL, Amount is a share count and PricePerUnit is the execution
// price. For DIVIDEND, Amount carries the cash sum paid out and PricePerUnit
// is unused (dual-meaning field, kept for parity with the stored ledger).
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	InstrumentID uuid.UUID
	Date         time.Time // calendar day, UTC midnight
	Kind         TransactionKind
	Amount       decimal.Decimal
	PricePerUnit decimal.Decimal
	Fees         decimal.Decimal
}

// Day normalizes a timestamp to its UTC calendar day (midnight UTC).
// All ledger and price dates are stored and compared at this granularity.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate ensures the transaction adheres to ledger business rules.
// This runs when a transaction is recorded; the valuation engine assumes
// its input has already passed these checks.
func (t *Transaction) Validate() error {
	switch t.Kind {
	case TransactionKindBuy, TransactionKindSell, TransactionKindDividend:
	default:
		return errors.New("transaction kind must be BUY, SELL or DIVIDEND")
	}

	if t.InstrumentID == uuid.Nil {
		return errors.New("transaction must reference an instrument")
	}

	if t.Date.IsZero() {
		return errors.New("transaction date is required")
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}

	if t.Fees.IsNegative() {
		return errors.New("transaction fees cannot be negative")
	}

	if t.Kind == TransactionKindBuy || t.Kind == TransactionKindSell {
		if t.PricePerUnit.IsNegative() {
			return errors.New("price per unit cannot be negative")
		}
	}

	return nil
}
