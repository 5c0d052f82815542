// Package repository translates between domain transactions and the SQLite
// store, and announces committed writes on the change feed.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/feed"
	"fintrack/internal/storage"
)

// Repository re-exposes the store's operations typed in domain terms. It
// performs no validation; callers pre-validate snapshots before any write.
// The feed publisher is optional: writes succeed locally first, publish
// failures are logged and never fail the caller.
type Repository struct {
	store *storage.Store
	feed  *feed.Client
}

func New(store *storage.Store, pub *feed.Client) *Repository {
	return &Repository{
		store: store,
		feed:  pub,
	}
}

// Add persists a new transaction and returns the id the store assigned.
func (r *Repository) Add(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := r.store.Insert(ctx, toRecord(t))
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}
	r.publish(ctx, feed.OpAdded, id)
	return id, nil
}

// Update overwrites the stored transaction with the same id. Updating an id
// that no longer exists surfaces storage.ErrNotFound.
func (r *Repository) Update(ctx context.Context, t core.Transaction) error {
	if err := r.store.Update(ctx, toRecord(t)); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	r.publish(ctx, feed.OpUpdated, t.ID)
	return nil
}

// Delete removes the transaction with the given id. Absent ids are a no-op,
// so the operation is safe to retry; the feed is only notified when a row
// actually went away.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	existed := true
	if _, err := r.store.GetByID(ctx, id); err != nil {
		existed = false
	}
	if err := r.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if existed {
		r.publish(ctx, feed.OpDeleted, id)
	}
	return nil
}

// Get returns a single transaction by id, or storage.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	rec, err := r.store.GetByID(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t, err := toTransaction(rec)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ObserveAll exposes the store's live query in domain terms: the channel
// carries the full ordered list immediately and again after every committed
// write, until ctx is done.
func (r *Repository) ObserveAll(ctx context.Context) (<-chan []core.Transaction, error) {
	records, err := r.store.ObserveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe transactions: %w", err)
	}

	out := make(chan []core.Transaction, 1)
	go func() {
		defer close(out)
		for snapshot := range records {
			transactions := make([]core.Transaction, 0, len(snapshot))
			for _, rec := range snapshot {
				t, err := toTransaction(rec)
				if err != nil {
					// A row the domain cannot represent is skipped, not fatal
					// to the whole subscription.
					slog.WarnContext(ctx, "Skipping unreadable transaction row",
						"id", rec.ID, "error", err)
					continue
				}
				transactions = append(transactions, t)
			}
			// Conflated like the store's channel: replace an undelivered
			// snapshot with the newer one.
			select {
			case <-out:
			default:
			}
			out <- transactions
		}
	}()
	return out, nil
}

func (r *Repository) publish(ctx context.Context, op string, id int64) {
	if r.feed == nil {
		return
	}
	if err := r.feed.Publish(ctx, feed.NewMessage(op, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change feed message",
			"op", op, "id", id, "error", err)
	}
}

func toRecord(t core.Transaction) storage.Record {
	notes := sql.NullString{}
	if n := core.NormalizeNotes(t.Notes); n != "" {
		notes = sql.NullString{String: n, Valid: true}
	}
	return storage.Record{
		ID:       t.ID,
		Type:     string(t.Type),
		Category: t.Category,
		Amount:   t.Amount,
		Date:     t.Date,
		Notes:    notes,
	}
}

func toTransaction(r storage.Record) (core.Transaction, error) {
	typ, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	notes := ""
	if r.Notes.Valid {
		notes = r.Notes.String
	}
	return core.Transaction{
		ID:       r.ID,
		Type:     typ,
		Category: r.Category,
		Amount:   r.Amount,
		Date:     r.Date,
		Notes:    notes,
	}, nil
}
