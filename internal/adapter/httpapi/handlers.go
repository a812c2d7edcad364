package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
	"github.com/foliotrack/foliotrack-backend/internal/usecase/ledger"
)

const dateLayout = "2006-01-02"

// PositionsUsecase computes daily position snapshots for a user.
type PositionsUsecase interface {
	Positions(ctx context.Context, userID uuid.UUID, from, to time.Time) (*domain.PositionsResponse, error)
}

// LedgerUsecase records and lists investment transactions.
type LedgerUsecase interface {
	RecordTransaction(ctx context.Context, userID uuid.UUID, input ledger.RecordTransactionInput) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, until time.Time) ([]*domain.Transaction, error)
}

// Handler handles the REST API requests
type Handler struct {
	positions      PositionsUsecase
	ledger         LedgerUsecase
	instrumentRepo domain.InstrumentRepository
	log            zerolog.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	positions PositionsUsecase,
	ledgerService LedgerUsecase,
	instrumentRepo domain.InstrumentRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		positions:      positions,
		ledger:         ledgerService,
		instrumentRepo: instrumentRepo,
		log:            log.With().Str("handler", "api").Logger(),
	}
}

// HandleGetPositions returns the daily valuation snapshots for the
// requested date window. The window is validated here; the engine itself
// assumes from <= to.
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no user on request")
		return
	}

	from, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("from"), time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing from date (want YYYY-MM-DD)")
		return
	}
	to, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("to"), time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing to date (want YYYY-MM-DD)")
		return
	}
	if from.After(to) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	response, err := h.positions.Positions(r.Context(), userID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("positions request failed")
		writeError(w, http.StatusInternalServerError, "failed to compute positions")
		return
	}

	writeJSON(w, http.StatusOK, toPositionsPayload(response))
}

// transactionRequest is the JSON body for creating a ledger entry.
type transactionRequest struct {
	InstrumentID string `json:"instrument_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
	PricePerUnit string `json:"price_per_unit"`
	Fees         string `json:"fees"`
}

// HandleCreateTransaction records a new ledger entry for the acting user
func (h *Handler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no user on request")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.ledger.RecordTransaction(r.Context(), userID, input)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionPayload(tx))
}

// HandleListTransactions returns the acting user's ledger up to today
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no user on request")
		return
	}

	until := time.Now().UTC()
	if raw := r.URL.Query().Get("until"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid until date (want YYYY-MM-DD)")
			return
		}
		until = parsed
	}

	transactions, err := h.ledger.ListTransactions(r.Context(), userID, until)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("transaction list failed")
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	payload := make([]map[string]any, 0, len(transactions))
	for _, tx := range transactions {
		payload = append(payload, toTransactionPayload(tx))
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleListInstruments returns the instrument catalogue
func (h *Handler) HandleListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.instrumentRepo.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("instrument list failed")
		writeError(w, http.StatusInternalServerError, "failed to list instruments")
		return
	}

	payload := make([]map[string]any, 0, len(instruments))
	for _, instrument := range instruments {
		payload = append(payload, toInstrumentPayload(instrument))
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleHealth reports service liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func errInvalidField(name string) error {
	return fmt.Errorf("invalid or missing %s", name)
}

func (r *transactionRequest) toInput() (ledger.RecordTransactionInput, error) {
	var input ledger.RecordTransactionInput

	instrumentID, err := uuid.Parse(r.InstrumentID)
	if err != nil {
		return input, errInvalidField("instrument_id")
	}
	date, err := time.ParseInLocation(dateLayout, r.Date, time.UTC)
	if err != nil {
		return input, errInvalidField("date")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return input, errInvalidField("amount")
	}

	price := decimal.Zero
	if r.PricePerUnit != "" {
		if price, err = decimal.NewFromString(r.PricePerUnit); err != nil {
			return input, errInvalidField("price_per_unit")
		}
	}
	fees := decimal.Zero
	if r.Fees != "" {
		if fees, err = decimal.NewFromString(r.Fees); err != nil {
			return input, errInvalidField("fees")
		}
	}

	input.InstrumentID = instrumentID
	input.Date = date
	input.Kind = domain.TransactionKind(r.Kind)
	input.Amount = amount
	input.PricePerUnit = price
	input.Fees = fees
	return input, nil
}

func toPositionsPayload(response *domain.PositionsResponse) map[string]any {
	snapshots := make([]map[string]any, 0, len(response.Snapshots))
	for i := range response.Snapshots {
		snapshots = append(snapshots, toSnapshotPayload(&response.Snapshots[i]))
	}

	instruments := make([]map[string]any, 0, len(response.Instruments))
	for _, instrument := range response.Instruments {
		instruments = append(instruments, toInstrumentPayload(instrument))
	}

	return map[string]any{
		"snapshots":   snapshots,
		"instruments": instruments,
	}
}

func toSnapshotPayload(s *domain.PositionSnapshot) map[string]any {
	return map[string]any{
		"instrument_id":   s.InstrumentID,
		"date":            s.Date.Format(dateLayout),
		"currency":        s.Currency,
		"amount":          s.Amount.String(),
		"invested_cost":   s.InvestedCost.String(),
		"fees":            s.Fees.String(),
		"market_price":    s.MarketPrice.String(),
		"realized_gain":   s.RealizedGain.String(),
		"total_invested":  s.TotalInvested.String(),
		"current_value":   s.CurrentValue.String(),
		"unrealized_gain": s.UnrealizedGain.String(),
		"total_profit":    s.TotalProfit.String(),
	}
}

func toTransactionPayload(tx *domain.Transaction) map[string]any {
	return map[string]any{
		"id":             tx.ID,
		"instrument_id":  tx.InstrumentID,
		"date":           tx.Date.Format(dateLayout),
		"kind":           tx.Kind,
		"amount":         tx.Amount.String(),
		"price_per_unit": tx.PricePerUnit.String(),
		"fees":           tx.Fees.String(),
	}
}

func toInstrumentPayload(instrument *domain.Instrument) map[string]any {
	return map[string]any{
		"id":       instrument.ID,
		"symbol":   instrument.Symbol,
		"name":     instrument.Name,
		"currency": instrument.Currency,
	}
}
