package model

import "time"

// Subscription is one subscription lifecycle keyed by StreamID.
// Created active, optionally cancelled later; never deleted.
type Subscription struct {
	StreamID        string           `json:"stream_id"`
	Subscriber      string           `json:"subscriber"`
	CreatorWallet   string           `json:"creator_wallet"`
	Kind            SubscriptionKind `json:"kind"`
	AmountPerPeriod int64            `json:"amount_per_period"`
	IsActive        bool             `json:"is_active"`
	StartedAt       time.Time        `json:"started_at"`
	CancelledAt     *time.Time       `json:"cancelled_at,omitempty"`
}
