// Package storage implements the transaction store on SQLite: the usual
// insert/update/delete plus a live query that re-delivers the full ordered
// snapshot after every committed write.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an operation targets an id with no matching
// row. Deletes are exempt; they are idempotent and never report absence.
var ErrNotFound = errors.New("transaction not found")

// Record is the stored shape of a transaction.
type Record struct {
	ID       int64
	Type     string
	Category string
	Amount   float64
	Date     int64 // epoch milliseconds
	Notes    sql.NullString
}

type Store struct {
	db *sql.DB

	mu     sync.Mutex
	subs   map[int]chan []Record
	nextID int
	closed bool
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:   db,
		subs: make(map[int]chan []Record),
	}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert persists a new record and returns the id the store assigned.
func (s *Store) Insert(ctx context.Context, r Record) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (type, category, amount, date, notes) VALUES (?, ?, ?, ?, ?)`,
		r.Type, r.Category, r.Amount, r.Date, r.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction inserted",
		"id", id,
		"type", r.Type,
		"category", r.Category,
		"amount", r.Amount)

	s.broadcast(ctx)
	return id, nil
}

// Update overwrites the stored record matching r.ID. Updating an id that no
// longer exists returns ErrNotFound; callers must not assume success from a
// silent return.
func (s *Store) Update(ctx context.Context, r Record) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, category = ?, amount = ?, date = ?, notes = ? WHERE id = ?`,
		r.Type, r.Category, r.Amount, r.Date, r.Notes, r.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update transaction %d: %w", r.ID, ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", r.ID)
	s.broadcast(ctx)
	return nil
}

// DeleteByID removes the record with the given id. Deleting an absent id is
// a no-op so the operation stays safe to retry.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		slog.InfoContext(ctx, "Transaction deleted", "id", id)
		s.broadcast(ctx)
	}
	return nil
}

// GetByID returns a single record, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (Record, error) {
	var r Record
	err := s.db.QueryRowContext(ctx,
		`SELECT id, type, category, amount, date, notes FROM transactions WHERE id = ?`, id).
		Scan(&r.ID, &r.Type, &r.Category, &r.Amount, &r.Date, &r.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return r, nil
}

// QueryAll returns every record ordered by date descending, ties broken by
// insertion order.
func (s *Store) QueryAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, category, amount, date, notes FROM transactions ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Type, &r.Category, &r.Amount, &r.Date, &r.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}

// ObserveAll is the live query: the returned channel carries the current
// snapshot immediately and a fresh full snapshot after every committed
// insert, update, or delete. Delivery is conflated per subscriber, so a slow
// reader always sees the newest snapshot. The subscription is released and
// the channel closed when ctx is done or the store closes.
func (s *Store) ObserveAll(ctx context.Context) (<-chan []Record, error) {
	snapshot, err := s.QueryAll(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("observe transactions: store is closed")
	}
	ch := make(chan []Record, 1)
	ch <- snapshot
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if live, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(live)
		}
		s.mu.Unlock()
	}()

	return ch, nil
}

// broadcast re-runs the full query and pushes the snapshot to every
// subscriber. Runs in the writer's call, after the write committed, so a
// subscriber reading after the write always observes it.
func (s *Store) broadcast(ctx context.Context) {
	snapshot, err := s.QueryAll(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Live query refresh failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		// Conflate: replace any undelivered snapshot with the newest one.
		// All senders hold s.mu, so drain-then-send cannot interleave.
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
