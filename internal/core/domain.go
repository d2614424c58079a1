package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// Expense is one named amount entered into the calculator. Records are
	// created on add and never mutated afterwards.
	Expense struct {
		ID     int64
		Name   string
		Amount decimal.Decimal
	}
)

var (
	ErrEmptyName     = errors.New("empty expense name")
	ErrInvalidAmount = errors.New("invalid amount")
)

// ValidateAmount reports ErrInvalidAmount unless the amount is strictly positive.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return ValidateAmount(e.Amount)
}
