package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Expense TransactionType = "EXPENSE"
	Income  TransactionType = "INCOME"
)

type (
	TransactionType string

	// Transaction is an immutable value snapshot of one recorded entry.
	// ID 0 means the transaction has not been persisted yet; the store
	// assigns the id on insert. Notes is "" when absent.
	Transaction struct {
		ID       int64
		Type     TransactionType
		Category string
		Amount   float64 // positive currency value, single implicit currency
		Date     int64   // epoch milliseconds
		Notes    string
	}
)

var (
	ErrCategoryBlank     = errors.New("blank category")
	ErrAmountBlank       = errors.New("blank amount")
	ErrAmountNotPositive = errors.New("amount not positive")
	ErrAmountInvalid     = errors.New("invalid amount format")
	ErrUnknownType       = errors.New("unknown transaction type")
)

// ParseTransactionType converts a stored type label back to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case Expense, Income:
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
}

// Validate reports whether the snapshot is fit for persistence. These are
// the only invariants enforced before a write; the storage layer trusts them.
func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrCategoryBlank
	}
	if t.Amount <= 0 {
		return ErrAmountNotPositive
	}
	return nil
}

// NormalizeNotes collapses blank notes to absent. Whitespace-only notes are
// never persisted as empty strings.
func NormalizeNotes(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
