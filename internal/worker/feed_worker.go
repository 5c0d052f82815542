// Package worker turns change-feed messages into enriched audit log lines.
package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/feed"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionGetter is the read side the worker needs to enrich feed
// messages with the stored row.
type TransactionGetter interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
}

// FeedWorker consumes the change feed and writes one audit line per
// committed change. Added and updated messages are enriched with the current
// row; a row that is already gone is logged as such, not treated as an error
// (the delete may simply have raced the message).
type FeedWorker struct {
	repo   TransactionGetter
	logger *log.Logger
}

func NewFeedWorker(repo TransactionGetter, logger *log.Logger) *FeedWorker {
	return &FeedWorker{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage processes a single feed message. Returning an error requeues
// the message, so only transient failures propagate.
func (w *FeedWorker) HandleMessage(ctx context.Context, msg *feed.Message) error {
	switch msg.Op {
	case feed.OpAdded, feed.OpUpdated:
		return w.handleUpsert(ctx, msg)
	case feed.OpDeleted:
		w.logger.InfoContext(ctx, "Transaction removed",
			log.FieldFeedOp, msg.Op,
			log.FieldTransactionID, msg.ID)
		return nil
	default:
		// MessageFromJSON validates ops; anything else is a programming
		// error on the producer side and must not requeue forever.
		w.logger.WarnContext(ctx, "Dropping feed message with unknown operation",
			log.FieldFeedOp, msg.Op,
			log.FieldTransactionID, msg.ID)
		return nil
	}
}

func (w *FeedWorker) handleUpsert(ctx context.Context, msg *feed.Message) error {
	t, err := w.repo.Get(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.InfoContext(ctx, "Transaction already gone",
			log.FieldFeedOp, msg.Op,
			log.FieldTransactionID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch transaction %d: %w", msg.ID, err)
	}

	w.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldFeedOp, msg.Op,
		log.FieldTransactionID, t.ID,
		"type", string(t.Type),
		log.FieldCategory, t.Category,
		log.FieldAmount, t.Amount,
		log.FieldDateMillis, t.Date)
	return nil
}
