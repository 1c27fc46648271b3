package model

import (
	"time"

	"github.com/goccy/go-json"
)

// EventKind identifies one program event variant.
type EventKind string

const (
	EventRewardDeposited       EventKind = "RewardDeposited"
	EventRewardsDistributed    EventKind = "RewardsDistributed"
	EventRewardsClaimed        EventKind = "RewardsClaimed"
	EventRewardsTransferred    EventKind = "RewardsTransferred"
	EventSubscriptionCreated   EventKind = "SubscriptionCreated"
	EventSubscriptionCancelled EventKind = "SubscriptionCancelled"
	EventNftMinted             EventKind = "NftMinted"
	EventUnrecognized          EventKind = "Unrecognized"
)

// EventPayload is the closed union of decoded event payloads.
type EventPayload interface {
	EventKind() EventKind
}

func (RewardDepositedData) EventKind() EventKind       { return EventRewardDeposited }
func (RewardsDistributedData) EventKind() EventKind    { return EventRewardsDistributed }
func (RewardsClaimedData) EventKind() EventKind        { return EventRewardsClaimed }
func (RewardsTransferredData) EventKind() EventKind    { return EventRewardsTransferred }
func (SubscriptionCreatedData) EventKind() EventKind   { return EventSubscriptionCreated }
func (SubscriptionCancelledData) EventKind() EventKind { return EventSubscriptionCancelled }
func (NftMintedData) EventKind() EventKind             { return EventNftMinted }
func (UnrecognizedData) EventKind() EventKind          { return EventUnrecognized }

// DomainEvent is one decoded program event tied to its source transaction.
// Ordinal is the event's position among framed event lines within the
// transaction's log sequence; together with Signature it identifies the
// resulting ledger row.
type DomainEvent struct {
	Signature string
	Slot      uint64
	BlockTime time.Time
	Ordinal   int
	Payload   EventPayload
	Raw       json.RawMessage
}

// Kind returns the payload's event kind.
func (e DomainEvent) Kind() EventKind {
	if e.Payload == nil {
		return EventUnrecognized
	}
	return e.Payload.EventKind()
}

// DecodeNote records a decode failure for one framed log line. The sibling
// events of the same transaction are unaffected.
type DecodeNote struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	Ordinal   int    `json:"ordinal"`
	Line      string `json:"line"`
	Error     string `json:"error"`
}
