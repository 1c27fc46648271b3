package ingest

import (
	"time"

	"rewardledger/internal/model"
)

// Mutation is one store write derived from a domain event.
type Mutation interface {
	isMutation()
}

// InsertLedgerRow commits one ledger row.
type InsertLedgerRow struct {
	Row model.LedgerRow
}

// CreateSubscription opens a subscription lifecycle.
type CreateSubscription struct {
	Sub model.Subscription
}

// CancelSubscription closes a subscription lifecycle.
type CancelSubscription struct {
	StreamID string
	At       time.Time
}

func (InsertLedgerRow) isMutation()    {}
func (CreateSubscription) isMutation() {}
func (CancelSubscription) isMutation() {}
