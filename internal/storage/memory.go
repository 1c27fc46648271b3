package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rewardledger/internal/model"
)

// MemoryStore is an in-process Store used for tests and local development.
// It mirrors the Postgres store's semantics, including the idempotency key.
type MemoryStore struct {
	mu            sync.RWMutex
	rows          []model.LedgerRow
	seen          map[string]struct{}
	subscriptions map[string]model.Subscription
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen:          make(map[string]struct{}),
		subscriptions: make(map[string]model.Subscription),
	}
}

func rowKey(signature string, ordinal int) string {
	return fmt.Sprintf("%s:%d", signature, ordinal)
}

// InsertLedgerRow commits one row; duplicates are silent no-ops.
func (s *MemoryStore) InsertLedgerRow(_ context.Context, row model.LedgerRow) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rowKey(row.Signature, row.EventOrdinal)
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = struct{}{}
	s.rows = append(s.rows, row)
	return true, nil
}

// CreateSubscription inserts a subscription unless the stream already exists.
func (s *MemoryStore) CreateSubscription(_ context.Context, sub model.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.StreamID]; ok {
		return nil
	}
	s.subscriptions[sub.StreamID] = sub
	return nil
}

// CancelSubscription deactivates a subscription; repeat cancels and unknown
// streams are harmless.
func (s *MemoryStore) CancelSubscription(_ context.Context, streamID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[streamID]
	if !ok {
		return nil
	}
	if !sub.IsActive {
		return nil
	}
	sub.IsActive = false
	cancelled := at.UTC()
	sub.CancelledAt = &cancelled
	s.subscriptions[streamID] = sub
	return nil
}

// Subscription returns one subscription by stream ID.
func (s *MemoryStore) Subscription(streamID string) (model.Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[streamID]
	return sub, ok
}

// QueryLedger filters, orders, and pages the stored rows. Ordering is by
// (block_time, signature, event_ordinal) so pages over fixed data are stable.
func (s *MemoryStore) QueryLedger(_ context.Context, f LedgerFilter) ([]model.LedgerRow, int64, error) {
	f.Normalize()

	s.mu.RLock()
	matched := make([]model.LedgerRow, 0, len(s.rows))
	for _, row := range s.rows {
		if f.Matches(row) {
			matched = append(matched, row)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if f.Order == SortDesc {
			a, b = b, a
		}
		if !a.BlockTime.Equal(b.BlockTime) {
			return a.BlockTime.Before(b.BlockTime)
		}
		if a.Signature != b.Signature {
			return a.Signature < b.Signature
		}
		return a.EventOrdinal < b.EventOrdinal
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []model.LedgerRow{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page := make([]model.LedgerRow, end-f.Offset)
	copy(page, matched[f.Offset:end])
	return page, total, nil
}

// WalletSummary aggregates counts per transaction type and claimed totals
// per pool type for one wallet.
func (s *MemoryStore) WalletSummary(_ context.Context, wallet string) (model.WalletSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := model.WalletSummary{
		Wallet:            wallet,
		TransactionCounts: make(map[model.TransactionType]int64),
		EarningsByPool:    make(map[model.PoolType]int64),
	}

	for _, row := range s.rows {
		involved := row.SourceWallet == wallet ||
			(row.ReceiverWallet != nil && *row.ReceiverWallet == wallet)
		if !involved {
			continue
		}
		summary.TransactionCounts[row.TransactionType]++
		if row.TransactionType == model.TxRewardClaim && row.SourceWallet == wallet {
			summary.TotalEarned += row.Amount
			if row.PoolType != nil {
				summary.EarningsByPool[*row.PoolType] += row.Amount
			}
		}
	}
	return summary, nil
}
