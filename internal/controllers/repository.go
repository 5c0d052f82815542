// Package controllers holds the two reactive view-state controllers shared
// by the list/summary screen and the add/edit form. Each controller exposes a
// state cell, a one-shot side-effect stream, and an event intake; the UI
// translates gestures into events and renders the latest state snapshot.
package controllers

import (
	"context"

	"fintrack/internal/core"
)

// TransactionRepository is the persistence contract the controllers depend
// on. repository.Repository satisfies it; tests substitute fakes.
type TransactionRepository interface {
	Add(ctx context.Context, t core.Transaction) (int64, error)
	Update(ctx context.Context, t core.Transaction) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (core.Transaction, error)
	ObserveAll(ctx context.Context) (<-chan []core.Transaction, error)
}
