package controllers

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestSummaryAggregates(t *testing.T) {
	repo := newFakeRepo(
		core.Transaction{Type: core.Income, Category: "Salary", Amount: 100, Date: 3000},
		core.Transaction{Type: core.Expense, Category: "Groceries", Amount: 40, Date: 2000},
		core.Transaction{Type: core.Income, Category: "Freelance", Amount: 25, Date: 1000},
	)
	c := NewSummaryController(repo)
	defer c.Close()
	c.Start(context.Background())

	waitFor(t, "first emission", func() bool { return !c.State().IsLoading })

	s := c.State()
	if s.TotalIncome != 125.0 {
		t.Fatalf("expected total income 125.0, got %v", s.TotalIncome)
	}
	if s.TotalExpenses != 40.0 {
		t.Fatalf("expected total expenses 40.0, got %v", s.TotalExpenses)
	}
	if s.Balance != 85.0 {
		t.Fatalf("expected balance 85.0, got %v", s.Balance)
	}
	if len(s.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(s.Transactions))
	}
}

func TestSummaryRecomputesOnEveryEmission(t *testing.T) {
	repo := newFakeRepo()
	c := NewSummaryController(repo)
	defer c.Close()
	c.Start(context.Background())
	waitFor(t, "initial emission", func() bool { return !c.State().IsLoading })

	c.OnEvent(context.Background(), AddTransaction{Transaction: core.Transaction{
		Type: core.Income, Category: "Salary", Amount: 2500, Date: 1000,
	}})
	waitFor(t, "aggregates after add", func() bool { return c.State().TotalIncome == 2500 })
	if got := c.State().Balance; got != 2500 {
		t.Fatalf("expected balance 2500, got %v", got)
	}
}

func TestSummaryAddSuccess(t *testing.T) {
	repo := newFakeRepo()
	c := NewSummaryController(repo)
	defer c.Close()
	effects := c.Effects()
	c.Start(context.Background())

	c.OnEvent(context.Background(), ShowAddDialog{})
	if !c.State().ShowAddDialog {
		t.Fatal("expected add dialog to be shown")
	}

	c.OnEvent(context.Background(), AddTransaction{Transaction: core.Transaction{
		Type: core.Expense, Category: "Coffee", Amount: 3, Date: 1000,
	}})

	if c.State().ShowAddDialog {
		t.Fatal("expected add dialog to close on success")
	}
	if _, ok := awaitEffect(t, effects).(TransactionAdded); !ok {
		t.Fatal("expected TransactionAdded effect first")
	}
	msg, ok := awaitEffect(t, effects).(ShowMessage)
	if !ok || msg.Text != "Transaction added successfully" {
		t.Fatalf("expected success message, got %+v", msg)
	}
	if len(repo.addCalls) != 1 {
		t.Fatalf("expected one add call, got %d", len(repo.addCalls))
	}
}

func TestSummaryAddFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failAdd = true
	c := NewSummaryController(repo)
	defer c.Close()
	effects := c.Effects()
	c.Start(context.Background())

	c.OnEvent(context.Background(), AddTransaction{Transaction: core.Transaction{
		Type: core.Expense, Category: "Coffee", Amount: 3, Date: 1000,
	}})

	if c.State().Err == "" {
		t.Fatal("expected error state after failed add")
	}
	msg, ok := awaitEffect(t, effects).(ShowMessage)
	if !ok || msg.Text != "Failed to add transaction" {
		t.Fatalf("expected failure message, got %+v", msg)
	}

	c.OnEvent(context.Background(), ClearSummaryError{})
	if c.State().Err != "" {
		t.Fatal("expected error to clear")
	}
}

func TestSummaryDelete(t *testing.T) {
	repo := newFakeRepo(core.Transaction{Type: core.Expense, Category: "Coffee", Amount: 3, Date: 1000})
	c := NewSummaryController(repo)
	defer c.Close()
	effects := c.Effects()
	c.Start(context.Background())
	waitFor(t, "initial emission", func() bool { return !c.State().IsLoading })

	c.OnEvent(context.Background(), DeleteTransaction{ID: 1})

	if _, ok := awaitEffect(t, effects).(TransactionDeleted); !ok {
		t.Fatal("expected TransactionDeleted effect first")
	}
	msg, ok := awaitEffect(t, effects).(ShowMessage)
	if !ok || msg.Text != "Transaction deleted successfully" {
		t.Fatalf("expected success message, got %+v", msg)
	}
	waitFor(t, "list without deleted row", func() bool { return len(c.State().Transactions) == 0 })

	if len(repo.deleteCalls) != 1 || repo.deleteCalls[0] != 1 {
		t.Fatalf("expected delete call for id 1, got %v", repo.deleteCalls)
	}
}

func TestSummaryDeleteFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failDelete = true
	c := NewSummaryController(repo)
	defer c.Close()
	effects := c.Effects()
	c.Start(context.Background())

	c.OnEvent(context.Background(), DeleteTransaction{ID: 5})

	if c.State().Err == "" {
		t.Fatal("expected error state after failed delete")
	}
	msg, ok := awaitEffect(t, effects).(ShowMessage)
	if !ok || msg.Text != "Failed to delete transaction" {
		t.Fatalf("expected failure message, got %+v", msg)
	}
}

func TestSummaryNoOptimisticUpdates(t *testing.T) {
	repo := newFakeRepo()
	repo.silentWrites = true
	c := NewSummaryController(repo)
	defer c.Close()
	c.Start(context.Background())
	waitFor(t, "initial emission", func() bool { return !c.State().IsLoading })

	c.OnEvent(context.Background(), AddTransaction{Transaction: core.Transaction{
		Type: core.Income, Category: "Salary", Amount: 100, Date: 1000,
	}})

	// The write succeeded but the live query never re-emitted; local state
	// must not change on its own.
	time.Sleep(50 * time.Millisecond)
	if len(c.State().Transactions) != 0 || c.State().TotalIncome != 0 {
		t.Fatalf("expected state untouched without a re-emission, got %+v", c.State())
	}
}

func TestSummarySubscriptionFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failObserve = true
	c := NewSummaryController(repo)
	defer c.Close()
	effects := c.Effects()
	c.Start(context.Background())

	s := c.State()
	if s.Err == "" {
		t.Fatal("expected error state after subscription failure")
	}
	if s.IsLoading || s.IsRefreshing {
		t.Fatalf("expected loading and refreshing cleared, got %+v", s)
	}
	msg, ok := awaitEffect(t, effects).(ShowMessage)
	if !ok || msg.Text != "Failed to load transactions" {
		t.Fatalf("expected load failure message, got %+v", msg)
	}
}

func TestSummaryRefreshResubscribes(t *testing.T) {
	repo := newFakeRepo(core.Transaction{Type: core.Expense, Category: "Rent", Amount: 800, Date: 1000})
	c := NewSummaryController(repo)
	defer c.Close()
	c.Start(context.Background())
	waitFor(t, "initial emission", func() bool { return !c.State().IsLoading })

	c.OnEvent(context.Background(), RefreshTransactions{})
	waitFor(t, "refresh emission", func() bool {
		s := c.State()
		return !s.IsRefreshing && !s.IsLoading
	})

	repo.mu.Lock()
	n := repo.observeCount
	repo.mu.Unlock()
	if n != 2 {
		t.Fatalf("expected a second subscription after refresh, got %d", n)
	}
	if got := c.State().TotalExpenses; got != 800 {
		t.Fatalf("expected totals preserved across refresh, got %v", got)
	}
}

func TestSummaryOpenTransaction(t *testing.T) {
	repo := newFakeRepo()
	c := NewSummaryController(repo)
	defer c.Close()
	effects := c.Effects()

	c.OnEvent(context.Background(), OpenTransaction{ID: 7})

	nav, ok := awaitEffect(t, effects).(NavigateToDetails)
	if !ok || nav.ID != 7 {
		t.Fatalf("expected NavigateToDetails{7}, got %+v", nav)
	}
}
