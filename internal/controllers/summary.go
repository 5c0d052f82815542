package controllers

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/reactive"
)

// User-facing messages emitted as one-shot notifications by the summary
// controller.
const (
	msgLoadFailed    = "Failed to load transactions"
	msgAddSuccess    = "Transaction added successfully"
	msgAddFailed     = "Failed to add transaction"
	msgDeleteSuccess = "Transaction deleted successfully"
	msgDeleteFailed  = "Failed to delete transaction"
)

// SummaryState is the read-only snapshot rendered by the list/summary view.
type SummaryState struct {
	Transactions  []core.Transaction
	TotalIncome   float64
	TotalExpenses float64
	Balance       float64
	IsLoading     bool
	Err           string
	ShowAddDialog bool
	IsRefreshing  bool
}

// SummaryEvent is the action-intake union for the list/summary view.
type SummaryEvent interface{ summaryEvent() }

type (
	LoadTransactions    struct{}
	RefreshTransactions struct{}
	ShowAddDialog       struct{}
	HideAddDialog       struct{}
	ClearSummaryError   struct{}
	AddTransaction      struct{ Transaction core.Transaction }
	DeleteTransaction   struct{ ID int64 }
	OpenTransaction     struct{ ID int64 }
)

func (LoadTransactions) summaryEvent()    {}
func (RefreshTransactions) summaryEvent() {}
func (ShowAddDialog) summaryEvent()       {}
func (HideAddDialog) summaryEvent()       {}
func (ClearSummaryError) summaryEvent()   {}
func (AddTransaction) summaryEvent()      {}
func (DeleteTransaction) summaryEvent()   {}
func (OpenTransaction) summaryEvent()     {}

// SummarySideEffect is the one-shot notification union for the list/summary
// view: UI hints, never state.
type SummarySideEffect interface{ summarySideEffect() }

type (
	ShowMessage        struct{ Text string }
	NavigateToDetails  struct{ ID int64 }
	TransactionAdded   struct{}
	TransactionDeleted struct{}
)

func (ShowMessage) summarySideEffect()        {}
func (NavigateToDetails) summarySideEffect()  {}
func (TransactionAdded) summarySideEffect()   {}
func (TransactionDeleted) summarySideEffect() {}

// SummaryController subscribes to the repository's live query, derives the
// income/expense/balance aggregates on every emission, and exposes the
// add/delete actions. It never updates the list optimistically; after a write
// it relies on the live query's re-emission.
type SummaryController struct {
	repo    TransactionRepository
	state   *reactive.Cell[SummaryState]
	effects *reactive.Effects[SummarySideEffect]

	mu        sync.Mutex
	cancelSub context.CancelFunc
}

func NewSummaryController(repo TransactionRepository) *SummaryController {
	return &SummaryController{
		repo:    repo,
		state:   reactive.NewCell(SummaryState{IsLoading: true}),
		effects: reactive.NewEffects[SummarySideEffect](),
	}
}

// Start activates the controller session: it subscribes to the live query
// under ctx, which bounds every subscription the controller opens.
func (c *SummaryController) Start(ctx context.Context) {
	c.OnEvent(ctx, LoadTransactions{})
}

// State returns the current snapshot.
func (c *SummaryController) State() SummaryState {
	return c.state.Get()
}

// ObserveState returns a conflated stream of state snapshots, starting with
// the current one.
func (c *SummaryController) ObserveState(ctx context.Context) <-chan SummaryState {
	return c.state.Subscribe(ctx)
}

// Effects attaches the single side-effect observer, replacing any previous
// one. Notifications emitted while nobody is attached are dropped.
func (c *SummaryController) Effects() <-chan SummarySideEffect {
	return c.effects.Attach()
}

// OnEvent dispatches one user action. State mutations are sequential and
// atomic from the perspective of state subscribers.
func (c *SummaryController) OnEvent(ctx context.Context, event SummaryEvent) {
	switch e := event.(type) {
	case LoadTransactions:
		c.load(ctx)
	case RefreshTransactions:
		c.state.Update(func(s SummaryState) SummaryState {
			s.IsRefreshing = true
			return s
		})
		c.load(ctx)
	case ShowAddDialog:
		c.state.Update(func(s SummaryState) SummaryState {
			s.ShowAddDialog = true
			return s
		})
	case HideAddDialog:
		c.state.Update(func(s SummaryState) SummaryState {
			s.ShowAddDialog = false
			return s
		})
	case ClearSummaryError:
		c.state.Update(func(s SummaryState) SummaryState {
			s.Err = ""
			return s
		})
	case AddTransaction:
		c.add(ctx, e.Transaction)
	case DeleteTransaction:
		c.delete(ctx, e.ID)
	case OpenTransaction:
		c.effects.Emit(NavigateToDetails{ID: e.ID})
	}
}

// Close ends the session: the live-query subscription is cancelled so the
// underlying store listener is released, and the effect observer detached.
func (c *SummaryController) Close() {
	c.mu.Lock()
	if c.cancelSub != nil {
		c.cancelSub()
		c.cancelSub = nil
	}
	c.mu.Unlock()
	c.effects.Detach()
}

// load (re)subscribes to the live query. Repeated triggers are harmless:
// the previous subscription is cancelled and each emission recomputes the
// aggregates from the full snapshot.
func (c *SummaryController) load(ctx context.Context) {
	c.mu.Lock()
	if c.cancelSub != nil {
		c.cancelSub()
	}
	subCtx, cancel := context.WithCancel(ctx)
	c.cancelSub = cancel
	c.mu.Unlock()

	c.state.Update(func(s SummaryState) SummaryState {
		s.IsLoading = true
		s.Err = ""
		return s
	})

	ch, err := c.repo.ObserveAll(subCtx)
	if err != nil {
		cancel()
		c.state.Update(func(s SummaryState) SummaryState {
			s.Err = err.Error()
			s.IsLoading = false
			s.IsRefreshing = false
			return s
		})
		c.effects.Emit(ShowMessage{Text: msgLoadFailed})
		return
	}

	go func() {
		for transactions := range ch {
			summary := core.Summarize(transactions)
			c.state.Update(func(s SummaryState) SummaryState {
				s.Transactions = transactions
				s.TotalIncome = summary.TotalIncome
				s.TotalExpenses = summary.TotalExpenses
				s.Balance = summary.Balance
				s.IsLoading = false
				s.IsRefreshing = false
				return s
			})
		}
	}()
}

func (c *SummaryController) add(ctx context.Context, t core.Transaction) {
	if _, err := c.repo.Add(ctx, t); err != nil {
		c.state.Update(func(s SummaryState) SummaryState {
			s.Err = err.Error()
			return s
		})
		c.effects.Emit(ShowMessage{Text: msgAddFailed})
		return
	}
	c.state.Update(func(s SummaryState) SummaryState {
		s.ShowAddDialog = false
		return s
	})
	c.effects.Emit(TransactionAdded{})
	c.effects.Emit(ShowMessage{Text: msgAddSuccess})
}

func (c *SummaryController) delete(ctx context.Context, id int64) {
	if err := c.repo.Delete(ctx, id); err != nil {
		c.state.Update(func(s SummaryState) SummaryState {
			s.Err = err.Error()
			return s
		})
		c.effects.Emit(ShowMessage{Text: msgDeleteFailed})
		return
	}
	c.effects.Emit(TransactionDeleted{})
	c.effects.Emit(ShowMessage{Text: msgDeleteSuccess})
}
