package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePoint represents the closing price of an instrument on one calendar day
type PricePoint struct {
	InstrumentID uuid.UUID
	Date         time.Time // calendar day, UTC midnight
	Close        decimal.Decimal
}

// Quote is a dated closing price as returned by an external market data
// source, before it is attached to an instrument.
type Quote struct {
	Date  time.Time
	Close decimal.Decimal
}
