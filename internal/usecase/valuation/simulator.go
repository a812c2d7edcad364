package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// simulate walks the calendar day by day from the first transaction date to
// the requested end date (inclusive) and emits one snapshot per day once a
// price has ever been seen for the instrument.
//
// Each day: apply that day's transactions in ledger order, then look up the
// day's closing price. A found price becomes the new carry-forward price; on
// gap days the last known price is reused. Days before the first known price
// produce no snapshot - the position cannot be valued yet.
//
// The per-instrument walk is strictly sequential: each day's snapshot depends
// on the prior day's lot state.
func simulate(
	instrument *domain.Instrument,
	transactions []*domain.Transaction,
	closeByDay map[time.Time]decimal.Decimal,
	to time.Time,
) []domain.PositionSnapshot {
	if len(transactions) == 0 {
		return nil
	}

	state := newPositionState()
	to = domain.Day(to)

	var snapshots []domain.PositionSnapshot
	var lastPrice decimal.Decimal
	priceKnown := false
	next := 0 // cursor into the date-ordered transaction slice

	for day := domain.Day(transactions[0].Date); !day.After(to); day = day.AddDate(0, 0, 1) {
		for next < len(transactions) && domain.Day(transactions[next].Date).Equal(day) {
			state.apply(transactions[next])
			next++
		}

		if price, ok := closeByDay[day]; ok {
			lastPrice = price
			priceKnown = true
		}
		if !priceKnown {
			continue
		}

		snapshots = append(snapshots, domain.NewPositionSnapshot(
			instrument.ID,
			day,
			instrument.Currency,
			state.lots.totalAmount(),
			state.lots.investedCost(),
			state.fees,
			lastPrice,
			state.realizedGain,
			state.totalInvested,
		))
	}

	return snapshots
}

// closesByDay reduces a price series to a single closing price per UTC
// calendar day. When several points exist for the same day the last one in
// the slice wins; this normalization happens once before the walk begins.
func closesByDay(points []*domain.PricePoint) map[time.Time]decimal.Decimal {
	closes := make(map[time.Time]decimal.Decimal, len(points))
	for _, p := range points {
		closes[domain.Day(p.Date)] = p.Close
	}
	return closes
}
