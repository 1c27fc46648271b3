package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rewardledger/internal/model"
	"rewardledger/internal/storage"
)

// ApplyResult summarizes the application of one event's mutations.
type ApplyResult struct {
	Inserted   int
	Duplicates int
	Failed     int
	Errors     []error
}

// Loader applies projected mutations to the store one mutation at a time,
// so a failure on one row never blocks the rows after it. Every write is
// idempotent, which makes the bounded retry around transient store errors
// safe.
type Loader struct {
	store      storage.Store
	logger     *zap.Logger
	maxRetries int
	backoff    time.Duration
}

// NewLoader builds a Loader. maxRetries and backoff bound the retry around
// each store write.
func NewLoader(store storage.Store, logger *zap.Logger, maxRetries int, backoff time.Duration) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		store:      store,
		logger:     logger,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Apply commits the mutations in order and reports per-row outcomes.
func (l *Loader) Apply(ctx context.Context, muts []Mutation) ApplyResult {
	var res ApplyResult
	for _, mut := range muts {
		switch m := mut.(type) {
		case InsertLedgerRow:
			l.applyLedgerRow(ctx, m.Row, &res)
		case CreateSubscription:
			err := withRetry(ctx, l.maxRetries, l.backoff, func(ctx context.Context) error {
				return l.store.CreateSubscription(ctx, m.Sub)
			})
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Errorf("create subscription %s: %w", m.Sub.StreamID, err))
				continue
			}
			res.Inserted++
		case CancelSubscription:
			err := withRetry(ctx, l.maxRetries, l.backoff, func(ctx context.Context) error {
				return l.store.CancelSubscription(ctx, m.StreamID, m.At)
			})
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Errorf("cancel subscription %s: %w", m.StreamID, err))
				continue
			}
			res.Inserted++
		default:
			res.Failed++
			res.Errors = append(res.Errors, fmt.Errorf("unsupported mutation %T", mut))
		}
	}
	return res
}

func (l *Loader) applyLedgerRow(ctx context.Context, row model.LedgerRow, res *ApplyResult) {
	var inserted bool
	err := withRetry(ctx, l.maxRetries, l.backoff, func(ctx context.Context) error {
		var err error
		inserted, err = l.store.InsertLedgerRow(ctx, row)
		return err
	})
	if err != nil {
		res.Failed++
		res.Errors = append(res.Errors, fmt.Errorf("ledger row %s/%d: %w", row.Signature, row.EventOrdinal, err))
		return
	}
	if !inserted {
		res.Duplicates++
		l.logger.Debug("duplicate ledger row",
			zap.String("signature", row.Signature),
			zap.Int("event_ordinal", row.EventOrdinal),
		)
		return
	}
	res.Inserted++
}
