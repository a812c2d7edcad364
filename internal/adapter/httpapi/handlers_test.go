package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/foliotrack-backend/internal/domain"
	"github.com/foliotrack/foliotrack-backend/internal/usecase/ledger"
)

const testToken = "test-token"

// stubPositions is a scripted PositionsUsecase
type stubPositions struct {
	gotUserID uuid.UUID
	gotFrom   time.Time
	gotTo     time.Time
	response  *domain.PositionsResponse
	err       error
}

func (s *stubPositions) Positions(ctx context.Context, userID uuid.UUID, from, to time.Time) (*domain.PositionsResponse, error) {
	s.gotUserID = userID
	s.gotFrom = from
	s.gotTo = to
	return s.response, s.err
}

// stubLedger is a scripted LedgerUsecase
type stubLedger struct {
	recorded *ledger.RecordTransactionInput
	tx       *domain.Transaction
	err      error
}

func (s *stubLedger) RecordTransaction(ctx context.Context, userID uuid.UUID, input ledger.RecordTransactionInput) (*domain.Transaction, error) {
	s.recorded = &input
	return s.tx, s.err
}

func (s *stubLedger) ListTransactions(ctx context.Context, userID uuid.UUID, until time.Time) ([]*domain.Transaction, error) {
	return nil, s.err
}

// stubInstrumentRepo satisfies domain.InstrumentRepository for handler tests
type stubInstrumentRepo struct {
	instruments []*domain.Instrument
}

func (s *stubInstrumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	return nil, nil
}

func (s *stubInstrumentRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Instrument, error) {
	return s.instruments, nil
}

func (s *stubInstrumentRepo) List(ctx context.Context) ([]*domain.Instrument, error) {
	return s.instruments, nil
}

func newTestServer(positions *stubPositions, ledgerStub *stubLedger) *Server {
	handler := NewHandler(positions, ledgerStub, &stubInstrumentRepo{}, zerolog.Nop())
	return NewServer(0, testToken, handler, zerolog.Nop())
}

func doRequest(t *testing.T, server *Server, method, target string, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)
	return recorder
}

func TestGetPositions_RequiresAuth(t *testing.T) {
	server := newTestServer(&stubPositions{}, &stubLedger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/positions?from=2026-02-10&to=2026-02-15", nil)
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetPositions_RejectsInvalidToken(t *testing.T) {
	server := newTestServer(&stubPositions{}, &stubLedger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/positions?from=2026-02-10&to=2026-02-15", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	req.Header.Set("X-User-Id", uuid.NewString())
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetPositions_RejectsBadDates(t *testing.T) {
	server := newTestServer(&stubPositions{}, &stubLedger{})
	userID := uuid.NewString()

	tests := []struct {
		name   string
		target string
	}{
		{"missing from", "/api/v1/positions?to=2026-02-15"},
		{"malformed from", "/api/v1/positions?from=15-02-2026&to=2026-02-15"},
		{"missing to", "/api/v1/positions?from=2026-02-10"},
		{"from after to", "/api/v1/positions?from=2026-02-16&to=2026-02-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doRequest(t, server, http.MethodGet, tt.target, userID, "")
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestGetPositions_PassesWindowAndUserExplicitly(t *testing.T) {
	userID := uuid.New()
	positions := &stubPositions{response: &domain.PositionsResponse{
		Snapshots:   []domain.PositionSnapshot{},
		Instruments: []*domain.Instrument{},
	}}
	server := newTestServer(positions, &stubLedger{})

	recorder := doRequest(t, server, http.MethodGet,
		"/api/v1/positions?from=2026-02-10&to=2026-02-15", userID.String(), "")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, userID, positions.gotUserID)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), positions.gotFrom)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), positions.gotTo)
	assert.JSONEq(t, `{"snapshots":[],"instruments":[]}`, recorder.Body.String())
}

func TestCreateTransaction_RecordsLedgerEntry(t *testing.T) {
	userID := uuid.New()
	instrumentID := uuid.New()
	ledgerStub := &stubLedger{tx: &domain.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		InstrumentID: instrumentID,
		Date:         time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		Kind:         domain.TransactionKindBuy,
		Amount:       decimal.NewFromInt(100),
		PricePerUnit: decimal.NewFromInt(50),
		Fees:         decimal.NewFromInt(10),
	}}
	server := newTestServer(&stubPositions{}, ledgerStub)

	body := `{
		"instrument_id": "` + instrumentID.String() + `",
		"date": "2026-02-05",
		"kind": "BUY",
		"amount": "100",
		"price_per_unit": "50",
		"fees": "10"
	}`
	recorder := doRequest(t, server, http.MethodPost, "/api/v1/transactions", userID.String(), body)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, ledgerStub.recorded)
	assert.Equal(t, instrumentID, ledgerStub.recorded.InstrumentID)
	assert.Equal(t, domain.TransactionKindBuy, ledgerStub.recorded.Kind)
	assert.True(t, ledgerStub.recorded.Amount.Equal(decimal.NewFromInt(100)))
}

func TestCreateTransaction_RejectsMalformedBody(t *testing.T) {
	server := newTestServer(&stubPositions{}, &stubLedger{})

	recorder := doRequest(t, server, http.MethodPost, "/api/v1/transactions",
		uuid.NewString(), `{"instrument_id": "not-a-uuid"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHealth_IsPublic(t *testing.T) {
	server := newTestServer(&stubPositions{}, &stubLedger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}
