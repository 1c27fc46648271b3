package ingest

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rewardledger/internal/metrics"
	"rewardledger/internal/model"
	"rewardledger/internal/storage"
)

// ParseNotifications normalizes a webhook body into the canonical
// notification sequence. The source delivers either a single notification
// object or a JSON array of them; both forms are accepted here, at the
// boundary, and nowhere else.
func ParseNotifications(body []byte) ([]model.TransactionNotification, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	if trimmed[0] == '[' {
		var batch []model.TransactionNotification
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, fmt.Errorf("decode batch payload: %w", err)
		}
		return batch, nil
	}
	var single model.TransactionNotification
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return []model.TransactionNotification{single}, nil
}

// DeadLetterSink retains undecodable events so a batch can be replayed
// after a decoder or projector upgrade.
type DeadLetterSink interface {
	Record(note model.DecodeNote) error
}

// ControllerConfig holds batch processing settings.
type ControllerConfig struct {
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Controller drives decode, projection, and loading for each transaction
// of a webhook batch. Transactions are independent (distinct signatures)
// and fan out to a bounded worker pool; events within one transaction run
// sequentially because the ordinal is part of the row identity. Failures
// are recorded per item and never abort the batch.
type Controller struct {
	cfg    ControllerConfig
	router *Router
	loader *Loader
	dead   DeadLetterSink
	ingest *metrics.Ingest
	logger *zap.Logger
	now    func() time.Time
}

// NewController builds a Controller. dead and ingestMetrics may be nil.
func NewController(cfg ControllerConfig, store storage.Store, dead DeadLetterSink, ingestMetrics *metrics.Ingest, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Controller{
		cfg:    cfg,
		router: NewRouter(),
		loader: NewLoader(store, logger, cfg.MaxRetries, cfg.RetryBackoff),
		dead:   dead,
		ingest: ingestMetrics,
		logger: logger,
		now:    time.Now,
	}
}

// Ingest processes one normalized batch and returns its summary. Rows
// committed before a cancellation stay committed; the summary reflects
// whatever had been accumulated.
func (c *Controller) Ingest(ctx context.Context, notifications []model.TransactionNotification) model.IngestionSummary {
	batchID := uuid.NewString()
	receipt := c.now().UTC()

	var mu sync.Mutex
	var summary model.IngestionSummary

	g := new(errgroup.Group)
	g.SetLimit(c.cfg.Workers)
	for _, notification := range notifications {
		if ctx.Err() != nil {
			break
		}
		n := notification
		g.Go(func() error {
			errs, failures := c.processTransaction(ctx, n, receipt)
			mu.Lock()
			summary.Processed++
			summary.Errors += errs
			summary.Failures = append(summary.Failures, failures...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Info("batch complete",
		zap.String("batch_id", batchID),
		zap.Int("transactions", len(notifications)),
		zap.Int("processed", summary.Processed),
		zap.Int("errors", summary.Errors),
	)
	return summary
}

func (c *Controller) processTransaction(ctx context.Context, n model.TransactionNotification, receipt time.Time) (int, []model.TransactionFailure) {
	if c.ingest != nil {
		c.ingest.Transactions.Inc()
	}
	if n.Signature == "" {
		return 1, []model.TransactionFailure{{Error: "notification missing signature"}}
	}

	blockTime := n.BlockTimeOrDefault(receipt)
	events, notes := DecodeTransaction(n, blockTime)

	errs := 0
	var failures []model.TransactionFailure

	for _, note := range notes {
		errs++
		ord := note.Ordinal
		failures = append(failures, model.TransactionFailure{
			Signature: note.Signature,
			Ordinal:   &ord,
			Error:     note.Error,
		})
		if c.ingest != nil {
			c.ingest.EventsFailed.Inc()
		}
		if c.dead != nil {
			if err := c.dead.Record(note); err != nil {
				c.logger.Warn("dead letter write failed", zap.String("signature", note.Signature), zap.Error(err))
			}
		}
		c.logger.Warn("event decode failed",
			zap.String("signature", note.Signature),
			zap.Int("event_ordinal", note.Ordinal),
			zap.String("error", note.Error),
		)
	}

	for _, ev := range events {
		if c.ingest != nil {
			c.ingest.EventsDecoded.Inc()
		}

		muts, err := c.router.Project(ev)
		if err != nil {
			errs++
			ord := ev.Ordinal
			failures = append(failures, model.TransactionFailure{
				Signature: ev.Signature,
				Ordinal:   &ord,
				Error:     err.Error(),
			})
			if c.ingest != nil {
				c.ingest.EventsFailed.Inc()
			}
			c.logger.Warn("event projection failed",
				zap.String("signature", ev.Signature),
				zap.Int("event_ordinal", ev.Ordinal),
				zap.Error(err),
			)
			continue
		}

		res := c.loader.Apply(ctx, muts)
		errs += res.Failed
		for _, applyErr := range res.Errors {
			ord := ev.Ordinal
			failures = append(failures, model.TransactionFailure{
				Signature: ev.Signature,
				Ordinal:   &ord,
				Error:     applyErr.Error(),
			})
		}
		if c.ingest != nil {
			c.ingest.RowsInserted.Add(float64(res.Inserted))
			c.ingest.RowsDuplicate.Add(float64(res.Duplicates))
		}
	}

	return errs, failures
}
