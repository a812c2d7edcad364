package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Instrument represents a tradable security referenced by ledger transactions
type Instrument struct {
	ID       uuid.UUID
	Symbol   string
	Name     string
	Currency string
}

// Validate ensures the instrument adheres to domain rules
func (i *Instrument) Validate() error {
	if i.Symbol == "" {
		return errors.New("instrument symbol cannot be empty")
	}

	if i.Currency == "" {
		return errors.New("instrument currency cannot be empty")
	}

	return nil
}
