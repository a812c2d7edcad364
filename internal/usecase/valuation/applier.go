package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// positionState holds the FIFO lot queue and running accumulators for one
// instrument during a simulation walk. A fresh state is built per instrument
// per request; nothing here is shared or reused.
type positionState struct {
	lots          lotQueue
	fees          decimal.Decimal // cumulative fees across buys and sells
	realizedCash  decimal.Decimal // dividends plus net sell proceeds
	realizedGain  decimal.Decimal // FIFO profit from closed lots plus dividends
	totalInvested decimal.Decimal // gross cash ever put in via buys
}

func newPositionState() *positionState {
	return &positionState{
		fees:          decimal.Zero,
		realizedCash:  decimal.Zero,
		realizedGain:  decimal.Zero,
		totalInvested: decimal.Zero,
	}
}

// apply folds one transaction into the lot queue and accumulators.
// Transactions must arrive in date order; same-day transactions keep their
// ledger order.
func (s *positionState) apply(tx *domain.Transaction) {
	switch tx.Kind {
	case domain.TransactionKindBuy:
		s.applyBuy(tx)
	case domain.TransactionKindSell:
		s.applySell(tx)
	case domain.TransactionKindDividend:
		s.applyDividend(tx)
	}
}

func (s *positionState) applyBuy(tx *domain.Transaction) {
	s.fees = s.fees.Add(tx.Fees)
	s.totalInvested = s.totalInvested.Add(tx.Amount.Mul(tx.PricePerUnit)).Add(tx.Fees)

	// Fees are folded into the cost basis at acquisition time.
	unitCost := tx.PricePerUnit.Add(tx.Fees.Div(tx.Amount))
	s.lots.push(tx.Amount, unitCost)
}

func (s *positionState) applySell(tx *domain.Transaction) {
	grossProceeds := tx.Amount.Mul(tx.PricePerUnit)
	netProceeds := grossProceeds.Sub(tx.Fees)

	s.realizedCash = s.realizedCash.Add(netProceeds)
	s.fees = s.fees.Add(tx.Fees)

	costBasis := s.lots.consume(tx.Amount)
	s.realizedGain = s.realizedGain.Add(netProceeds.Sub(costBasis))
}

// applyDividend treats the whole payout as profit: pure cash event, no lot
// mutation and no cost basis reduction. Amount carries the cash sum.
func (s *positionState) applyDividend(tx *domain.Transaction) {
	s.realizedCash = s.realizedCash.Add(tx.Amount)
	s.realizedGain = s.realizedGain.Add(tx.Amount)
}
