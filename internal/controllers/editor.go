package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/reactive"
)

// Field-level validation messages shown next to the form inputs.
const (
	MsgCategoryRequired  = "Category is required"
	MsgAmountRequired    = "Amount is required"
	MsgAmountNotPositive = "Amount must be greater than 0"
	MsgAmountInvalid     = "Invalid amount format"
)

const (
	msgSaveSuccess   = "Transaction saved successfully"
	msgSaveFailed    = "Failed to save transaction"
	msgLoadOneFailed = "Failed to load transaction"
)

// EditorState is the draft held by the add/edit form. Amount stays raw text
// so partially typed input survives; numeric conversion happens only at
// validation and save time. TransactionID 0 means create mode.
type EditorState struct {
	TransactionID  int64
	Type           core.TransactionType
	Category       string
	Amount         string
	Date           int64 // epoch milliseconds
	Notes          string
	IsValid        bool
	IsLoading      bool
	IsSaved        bool
	ShowDatePicker bool
	CategoryError  string
	AmountError    string
	Err            string
}

// EditorEvent is the action-intake union for the add/edit form.
type EditorEvent interface{ editorEvent() }

type (
	LoadTransaction  struct{ ID int64 }
	UpdateType       struct{ Type core.TransactionType }
	UpdateCategory   struct{ Category string }
	UpdateAmount     struct{ Amount string }
	UpdateDate       struct{ Date int64 }
	UpdateNotes      struct{ Notes string }
	ShowDatePicker   struct{}
	HideDatePicker   struct{}
	SaveTransaction  struct{}
	ClearEditorError struct{}
	NavigateBack     struct{}
)

func (LoadTransaction) editorEvent()  {}
func (UpdateType) editorEvent()       {}
func (UpdateCategory) editorEvent()   {}
func (UpdateAmount) editorEvent()     {}
func (UpdateDate) editorEvent()       {}
func (UpdateNotes) editorEvent()      {}
func (ShowDatePicker) editorEvent()   {}
func (HideDatePicker) editorEvent()   {}
func (SaveTransaction) editorEvent()  {}
func (ClearEditorError) editorEvent() {}
func (NavigateBack) editorEvent()     {}

// EditorSideEffect is the one-shot notification union for the add/edit form.
type EditorSideEffect interface{ editorSideEffect() }

type (
	EditorMessage      struct{ Text string }
	EditorNavigateBack struct{}
	TransactionSaved   struct{}
)

func (EditorMessage) editorSideEffect()      {}
func (EditorNavigateBack) editorSideEffect() {}
func (TransactionSaved) editorSideEffect()   {}

// EditorController owns a single in-progress transaction draft, re-validates
// it after every field change, and on save delegates to the repository's add
// or update depending on whether an id is present.
type EditorController struct {
	repo    TransactionRepository
	state   *reactive.Cell[EditorState]
	effects *reactive.Effects[EditorSideEffect]
	now     func() time.Time
}

// NewEditorController starts a create-mode session: the draft is an expense
// dated now, invalid until the user fills in category and amount. Editing an
// existing transaction begins with a LoadTransaction event.
func NewEditorController(repo TransactionRepository) *EditorController {
	c := &EditorController{
		repo:    repo,
		effects: reactive.NewEffects[EditorSideEffect](),
		now:     time.Now,
	}
	c.state = reactive.NewCell(validate(EditorState{
		Type: core.Expense,
		Date: c.now().UnixMilli(),
	}))
	return c
}

// State returns the current draft snapshot.
func (c *EditorController) State() EditorState {
	return c.state.Get()
}

// ObserveState returns a conflated stream of draft snapshots, starting with
// the current one.
func (c *EditorController) ObserveState(ctx context.Context) <-chan EditorState {
	return c.state.Subscribe(ctx)
}

// Effects attaches the single side-effect observer, replacing any previous
// one.
func (c *EditorController) Effects() <-chan EditorSideEffect {
	return c.effects.Attach()
}

// Close detaches the effect observer. The editor holds no long-lived
// subscriptions of its own.
func (c *EditorController) Close() {
	c.effects.Detach()
}

// OnEvent dispatches one user action. Every field update re-validates the
// draft synchronously.
func (c *EditorController) OnEvent(ctx context.Context, event EditorEvent) {
	switch e := event.(type) {
	case LoadTransaction:
		c.load(ctx, e.ID)
	case UpdateType:
		c.updateField(func(s EditorState) EditorState {
			s.Type = e.Type
			return s
		})
	case UpdateCategory:
		c.updateField(func(s EditorState) EditorState {
			s.Category = e.Category
			return s
		})
	case UpdateAmount:
		c.updateField(func(s EditorState) EditorState {
			s.Amount = e.Amount
			return s
		})
	case UpdateDate:
		c.updateField(func(s EditorState) EditorState {
			s.Date = e.Date
			return s
		})
	case UpdateNotes:
		c.updateField(func(s EditorState) EditorState {
			s.Notes = e.Notes
			return s
		})
	case ShowDatePicker:
		c.state.Update(func(s EditorState) EditorState {
			s.ShowDatePicker = true
			return s
		})
	case HideDatePicker:
		c.state.Update(func(s EditorState) EditorState {
			s.ShowDatePicker = false
			return s
		})
	case SaveTransaction:
		c.save(ctx)
	case ClearEditorError:
		c.state.Update(func(s EditorState) EditorState {
			s.Err = ""
			return s
		})
	case NavigateBack:
		c.effects.Emit(EditorNavigateBack{})
	}
}

func (c *EditorController) updateField(mutate func(EditorState) EditorState) {
	c.state.Update(func(s EditorState) EditorState {
		return validate(mutate(s))
	})
}

// load enters edit mode: it fetches the stored row and populates every field
// before the draft becomes editable, so saving cannot silently overwrite the
// row with defaults.
func (c *EditorController) load(ctx context.Context, id int64) {
	c.state.Update(func(s EditorState) EditorState {
		s.TransactionID = id
		s.IsLoading = true
		s.Err = ""
		return s
	})

	t, err := c.repo.Get(ctx, id)
	if err != nil {
		c.state.Update(func(s EditorState) EditorState {
			s.IsLoading = false
			s.Err = err.Error()
			return s
		})
		c.effects.Emit(EditorMessage{Text: msgLoadOneFailed})
		return
	}

	c.state.Update(func(s EditorState) EditorState {
		s.Type = t.Type
		s.Category = t.Category
		s.Amount = formatAmount(t.Amount)
		s.Date = t.Date
		s.Notes = t.Notes
		s.IsLoading = false
		return validate(s)
	})
}

// save persists the draft. Invalid drafts are rejected here as well; the UI
// disables the save trigger, this is the defensive gate behind it. The three
// one-shot notifications are emitted only after the store call resolves.
func (c *EditorController) save(ctx context.Context) {
	s := c.state.Get()
	if !s.IsValid {
		return
	}

	amount, err := core.ParseAmount(s.Amount)
	if err != nil {
		// Unreachable while IsValid holds; kept as the same failure path as
		// a store error so the state machine stays in Editing.
		c.fail(err)
		return
	}

	t := core.Transaction{
		ID:       s.TransactionID,
		Type:     s.Type,
		Category: strings.TrimSpace(s.Category),
		Amount:   amount,
		Date:     s.Date,
		Notes:    core.NormalizeNotes(s.Notes),
	}

	if s.TransactionID == 0 {
		_, err = c.repo.Add(ctx, t)
	} else {
		err = c.repo.Update(ctx, t)
	}
	if err != nil {
		c.fail(err)
		return
	}

	c.state.Update(func(s EditorState) EditorState {
		s.IsSaved = true
		s.Err = ""
		return s
	})
	c.effects.Emit(TransactionSaved{})
	c.effects.Emit(EditorMessage{Text: msgSaveSuccess})
	c.effects.Emit(EditorNavigateBack{})
}

func (c *EditorController) fail(err error) {
	c.state.Update(func(s EditorState) EditorState {
		s.Err = err.Error()
		return s
	})
	c.effects.Emit(EditorMessage{Text: msgSaveFailed})
}

// validate re-derives the field errors and the validity flag from the draft.
func validate(s EditorState) EditorState {
	s.CategoryError = ""
	s.AmountError = ""
	valid := true

	if strings.TrimSpace(s.Category) == "" {
		s.CategoryError = MsgCategoryRequired
		valid = false
	}

	if _, err := core.ParseAmount(s.Amount); err != nil {
		switch {
		case errors.Is(err, core.ErrAmountBlank):
			s.AmountError = MsgAmountRequired
		case errors.Is(err, core.ErrAmountNotPositive):
			s.AmountError = MsgAmountNotPositive
		default:
			s.AmountError = MsgAmountInvalid
		}
		valid = false
	}

	s.IsValid = valid
	return s
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
