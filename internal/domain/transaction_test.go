package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	instrumentID := uuid.New()
	date := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid buy should pass",
			tx: Transaction{
				InstrumentID: instrumentID,
				Date:         date,
				Kind:         TransactionKindBuy,
				Amount:       decimal.NewFromInt(100),
				PricePerUnit: decimal.NewFromInt(50),
				Fees:         decimal.NewFromInt(10),
			},
			wantErr: false,
		},
		{
			name: "Valid dividend with zero price should pass",
			tx: Transaction{
				InstrumentID: instrumentID,
				Date:         date,
				Kind:         TransactionKindDividend,
				Amount:       decimal.NewFromInt(300),
			},
			wantErr: false,
		},
		{
			name: "Unknown kind should fail",
			tx: Transaction{
				InstrumentID: instrumentID,
				Date:         date,
				Kind:         TransactionKind("TRANSFER"),
				Amount:       decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "transaction kind must be BUY, SELL or DIVIDEND",
		},
		{
			name: "Missing instrument should fail",
			tx: Transaction{
				Date:   date,
				Kind:   TransactionKindBuy,
				Amount: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "transaction must reference an instrument",
		},
		{
			name: "Zero amount should fail",
			tx: Transaction{
				InstrumentID: instrumentID,
				Date:         date,
				Kind:         TransactionKindSell,
				Amount:       decimal.Zero,
			},
			wantErr: true,
			errMsg:  "transaction amount must be positive",
		},
		{
			name: "Negative fees should fail",
			tx: Transaction{
				InstrumentID: instrumentID,
				Date:         date,
				Kind:         TransactionKindBuy,
				Amount:       decimal.NewFromInt(1),
				Fees:         decimal.NewFromInt(-1),
			},
			wantErr: true,
			errMsg:  "transaction fees cannot be negative",
		},
		{
			name: "Negative price on sell should fail",
			tx: Transaction{
				InstrumentID: instrumentID,
				Date:         date,
				Kind:         TransactionKindSell,
				Amount:       decimal.NewFromInt(1),
				PricePerUnit: decimal.NewFromInt(-5),
			},
			wantErr: true,
			errMsg:  "price per unit cannot be negative",
		},
		{
			name: "Missing date should fail",
			tx: Transaction{
				InstrumentID: instrumentID,
				Kind:         TransactionKindBuy,
				Amount:       decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "transaction date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDay_NormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2026, 2, 5, 14, 30, 12, 500, loc)

	got := Day(in)

	assert.Equal(t, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), got)
}
