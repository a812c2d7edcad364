package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
)

// RecordTransactionInput represents the input for recording a ledger entry
type RecordTransactionInput struct {
	InstrumentID uuid.UUID
	Date         time.Time
	Kind         domain.TransactionKind
	Amount       decimal.Decimal
	PricePerUnit decimal.Decimal
	Fees         decimal.Decimal
}

// Service handles recording and listing of investment transactions. All
// business validation of incoming transactions happens here, upstream of the
// valuation engine.
type Service struct {
	TransactionRepo domain.TransactionRepository
	InstrumentRepo  domain.InstrumentRepository

	log zerolog.Logger
}

// NewService creates a new ledger Service instance
func NewService(
	transactionRepo domain.TransactionRepository,
	instrumentRepo domain.InstrumentRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		TransactionRepo: transactionRepo,
		InstrumentRepo:  instrumentRepo,
		log:             log.With().Str("usecase", "ledger").Logger(),
	}
}

// RecordTransaction validates and persists a new ledger entry for the user.
// The transaction date is normalized to its UTC calendar day before storage.
func (s *Service) RecordTransaction(ctx context.Context, userID uuid.UUID, input RecordTransactionInput) (*domain.Transaction, error) {
	tx := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		InstrumentID: input.InstrumentID,
		Date:         domain.Day(input.Date),
		Kind:         input.Kind,
		Amount:       input.Amount,
		PricePerUnit: input.PricePerUnit,
		Fees:         input.Fees,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	// The instrument must exist before the ledger can reference it.
	if _, err := s.InstrumentRepo.GetByID(ctx, input.InstrumentID); err != nil {
		return nil, fmt.Errorf("unknown instrument %s: %w", input.InstrumentID, err)
	}

	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("kind", string(tx.Kind)).
		Str("instrument_id", tx.InstrumentID.String()).
		Msg("recorded transaction")

	return tx, nil
}

// ListTransactions returns the user's full ledger up to the until date,
// ordered by date ascending.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, until time.Time) ([]*domain.Transaction, error) {
	transactions, err := s.TransactionRepo.ListByUser(ctx, userID, domain.Day(until))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
