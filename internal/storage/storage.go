package storage

import (
	"context"
	"time"

	"rewardledger/internal/model"
)

// SortOrder selects block-time ordering for ledger queries.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	// DefaultLimit applies when a query does not request a page size.
	DefaultLimit = 50
	// MaxLimit caps the page size of any single query.
	MaxLimit = 1000
)

// LedgerFilter selects a subset of ledger rows. Wallet matches source or
// receiver; the remaining fields are exact-match. Time bounds are inclusive.
type LedgerFilter struct {
	Wallet          string
	Creator         string
	Content         string
	PoolType        *model.PoolType
	TransactionType *model.TransactionType
	StartTime       *time.Time
	EndTime         *time.Time
	Limit           int
	Offset          int
	Order           SortOrder
}

// Normalize clamps pagination and defaults the sort order.
func (f *LedgerFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Order != SortAsc {
		f.Order = SortDesc
	}
}

// Matches reports whether a row passes the filter's predicates. Pagination
// and ordering are not applied here.
func (f LedgerFilter) Matches(row model.LedgerRow) bool {
	if f.Wallet != "" {
		if row.SourceWallet != f.Wallet && (row.ReceiverWallet == nil || *row.ReceiverWallet != f.Wallet) {
			return false
		}
	}
	if f.Creator != "" && (row.CreatorWallet == nil || *row.CreatorWallet != f.Creator) {
		return false
	}
	if f.Content != "" && (row.ContentPubkey == nil || *row.ContentPubkey != f.Content) {
		return false
	}
	if f.PoolType != nil && (row.PoolType == nil || *row.PoolType != *f.PoolType) {
		return false
	}
	if f.TransactionType != nil && row.TransactionType != *f.TransactionType {
		return false
	}
	if f.StartTime != nil && row.BlockTime.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && row.BlockTime.After(*f.EndTime) {
		return false
	}
	return true
}

// Store is the persistence contract shared by the ingestion pipeline
// (writer) and the query service (reader). Ledger inserts are idempotent on
// (signature, event_ordinal); subscription writes are idempotent by nature.
type Store interface {
	// InsertLedgerRow commits one row. A duplicate identity key is a
	// silent no-op: the return value is false and err is nil.
	InsertLedgerRow(ctx context.Context, row model.LedgerRow) (bool, error)

	// CreateSubscription inserts a subscription; an existing stream_id is
	// left untouched.
	CreateSubscription(ctx context.Context, sub model.Subscription) error

	// CancelSubscription deactivates a subscription and records the
	// cancellation time. Cancelling twice, or cancelling an unknown
	// stream, is harmless.
	CancelSubscription(ctx context.Context, streamID string, at time.Time) error

	// QueryLedger returns one page of filtered rows plus the total count
	// of the filtered set.
	QueryLedger(ctx context.Context, f LedgerFilter) ([]model.LedgerRow, int64, error)

	// WalletSummary aggregates one wallet's activity.
	WalletSummary(ctx context.Context, wallet string) (model.WalletSummary, error)
}
