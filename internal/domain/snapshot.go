package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionSnapshot captures the valuation of one holding on one calendar day.
// Snapshots are immutable once created; the sequence of snapshots for an
// instrument forms its valuation history.
//
// InvestedCost is the cost basis of the shares still held (remaining lots),
// not the cumulative cash ever invested - that is TotalInvested.
type PositionSnapshot struct {
	InstrumentID   uuid.UUID
	Date           time.Time
	Currency       string
	Amount         decimal.Decimal
	InvestedCost   decimal.Decimal
	Fees           decimal.Decimal
	MarketPrice    decimal.Decimal
	RealizedGain   decimal.Decimal
	TotalInvested  decimal.Decimal
	CurrentValue   decimal.Decimal
	UnrealizedGain decimal.Decimal
	TotalProfit    decimal.Decimal
}

// NewPositionSnapshot builds a snapshot and fills in the derived valuation
// fields from the primary ones:
//
//	CurrentValue   = MarketPrice * Amount
//	UnrealizedGain = CurrentValue - InvestedCost
//	TotalProfit    = UnrealizedGain + RealizedGain
func NewPositionSnapshot(
	instrumentID uuid.UUID,
	date time.Time,
	currency string,
	amount, investedCost, fees, marketPrice, realizedGain, totalInvested decimal.Decimal,
) PositionSnapshot {
	currentValue := marketPrice.Mul(amount)
	unrealizedGain := currentValue.Sub(investedCost)

	return PositionSnapshot{
		InstrumentID:   instrumentID,
		Date:           date,
		Currency:       currency,
		Amount:         amount,
		InvestedCost:   investedCost,
		Fees:           fees,
		MarketPrice:    marketPrice,
		RealizedGain:   realizedGain,
		TotalInvested:  totalInvested,
		CurrentValue:   currentValue,
		UnrealizedGain: unrealizedGain,
		TotalProfit:    unrealizedGain.Add(realizedGain),
	}
}

// PositionsResponse is the payload returned by the valuation engine: all
// snapshots inside the requested window plus metadata for every instrument
// referenced by the user's ledger.
type PositionsResponse struct {
	Snapshots   []PositionSnapshot
	Instruments []*Instrument
}
