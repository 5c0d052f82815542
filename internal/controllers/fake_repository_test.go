package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
)

var errStoreDown = errors.New("store unavailable")

// fakeRepo is an in-memory TransactionRepository that records calls and
// mimics the live query by re-emitting the full list after each write.
type fakeRepo struct {
	mu           sync.Mutex
	transactions []core.Transaction
	nextID       int64

	addCalls     []core.Transaction
	updateCalls  []core.Transaction
	deleteCalls  []int64
	observeCount int

	failAdd      bool
	failUpdate   bool
	failDelete   bool
	failGet      bool
	failObserve  bool
	silentWrites bool // succeed without re-emitting, to prove no optimistic updates

	observers []chan []core.Transaction
}

func newFakeRepo(seed ...core.Transaction) *fakeRepo {
	f := &fakeRepo{nextID: 1}
	for _, t := range seed {
		if t.ID == 0 {
			t.ID = f.nextID
		}
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
		f.transactions = append(f.transactions, t)
	}
	return f
}

func (f *fakeRepo) Add(ctx context.Context, t core.Transaction) (int64, error) {
	f.mu.Lock()
	f.addCalls = append(f.addCalls, t)
	if f.failAdd {
		f.mu.Unlock()
		return 0, errStoreDown
	}
	t.ID = f.nextID
	f.nextID++
	f.transactions = append(f.transactions, t)
	f.mu.Unlock()
	f.broadcast()
	return t.ID, nil
}

func (f *fakeRepo) Update(ctx context.Context, t core.Transaction) error {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, t)
	if f.failUpdate {
		f.mu.Unlock()
		return errStoreDown
	}
	for i := range f.transactions {
		if f.transactions[i].ID == t.ID {
			f.transactions[i] = t
		}
	}
	f.mu.Unlock()
	f.broadcast()
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.failDelete {
		f.mu.Unlock()
		return errStoreDown
	}
	kept := f.transactions[:0]
	for _, t := range f.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.transactions = kept
	f.mu.Unlock()
	f.broadcast()
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return core.Transaction{}, errStoreDown
	}
	for _, t := range f.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, errors.New("transaction not found")
}

func (f *fakeRepo) ObserveAll(ctx context.Context) (<-chan []core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observeCount++
	if f.failObserve {
		return nil, errStoreDown
	}
	ch := make(chan []core.Transaction, 16)
	ch <- f.snapshotLocked()
	f.observers = append(f.observers, ch)
	return ch, nil
}

func (f *fakeRepo) broadcast() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.silentWrites {
		return
	}
	snap := f.snapshotLocked()
	for _, ch := range f.observers {
		ch <- snap
	}
}

func (f *fakeRepo) snapshotLocked() []core.Transaction {
	snap := make([]core.Transaction, len(f.transactions))
	copy(snap, f.transactions)
	return snap
}

// waitFor polls until cond holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func awaitEffect[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for side effect")
		panic("unreachable")
	}
}
