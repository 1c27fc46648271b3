package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// TransactionType is the closed accounting classification of a ledger row.
type TransactionType string

const (
	TxMint                  TransactionType = "mint"
	TxRewardClaim           TransactionType = "reward_claim"
	TxRewardTransfer        TransactionType = "reward_transfer"
	TxPatronSubscription    TransactionType = "patron_subscription"
	TxEcosystemSubscription TransactionType = "ecosystem_subscription"
)

// ParseTransactionType validates a transaction type string.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TxMint, TxRewardClaim, TxRewardTransfer, TxPatronSubscription, TxEcosystemSubscription:
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// PoolType is the accounting bucket a deposit or claim is attributed to.
type PoolType string

const (
	PoolContent             PoolType = "content"
	PoolBundle              PoolType = "bundle"
	PoolPatron              PoolType = "patron"
	PoolGlobalHolder        PoolType = "global_holder"
	PoolCreatorDistribution PoolType = "creator_distribution"
)

// ParsePoolType validates a pool type string.
func ParsePoolType(s string) (PoolType, error) {
	switch PoolType(s) {
	case PoolContent, PoolBundle, PoolPatron, PoolGlobalHolder, PoolCreatorDistribution:
		return PoolType(s), nil
	default:
		return "", fmt.Errorf("unknown pool type: %q", s)
	}
}

// SubscriptionKind distinguishes distribution and subscription flavors.
type SubscriptionKind string

const (
	SubscriptionPatron    SubscriptionKind = "patron"
	SubscriptionEcosystem SubscriptionKind = "ecosystem"
)

// ParseSubscriptionKind validates a subscription kind string.
func ParseSubscriptionKind(s string) (SubscriptionKind, error) {
	switch SubscriptionKind(s) {
	case SubscriptionPatron, SubscriptionEcosystem:
		return SubscriptionKind(s), nil
	default:
		return "", fmt.Errorf("unknown subscription kind: %q", s)
	}
}

// LedgerRow is one persisted record of a recognized accounting event.
// Identity is (Signature, EventOrdinal), never Signature alone: one
// transaction can emit multiple events. Nullable share columns distinguish
// "no split recorded" from "split recorded as zero".
type LedgerRow struct {
	Signature       string          `json:"signature"`
	EventOrdinal    int             `json:"event_ordinal"`
	BlockTime       time.Time       `json:"block_time"`
	Slot            uint64          `json:"slot"`
	TransactionType TransactionType `json:"transaction_type"`
	PoolType        *PoolType       `json:"pool_type,omitempty"`
	PoolID          *string         `json:"pool_id,omitempty"`
	Amount          int64           `json:"amount"`
	CreatorShare    *int64          `json:"creator_share,omitempty"`
	PlatformShare   *int64          `json:"platform_share,omitempty"`
	EcosystemShare  *int64          `json:"ecosystem_share,omitempty"`
	HolderShare     *int64          `json:"holder_share,omitempty"`
	SourceWallet    string          `json:"source_wallet"`
	CreatorWallet   *string         `json:"creator_wallet,omitempty"`
	ReceiverWallet  *string         `json:"receiver_wallet,omitempty"`
	ContentPubkey   *string         `json:"content_pubkey,omitempty"`
	NftAsset        *string         `json:"nft_asset,omitempty"`
	NftWeight       *int64          `json:"nft_weight,omitempty"`
	DebtBefore      *int64          `json:"debt_before,omitempty"`
	DebtAfter       *int64          `json:"debt_after,omitempty"`
	EventData       json.RawMessage `json:"event_data,omitempty"`
}

// HasFullSplit reports whether all four share columns are present.
func (r LedgerRow) HasFullSplit() bool {
	return r.CreatorShare != nil && r.PlatformShare != nil && r.EcosystemShare != nil && r.HolderShare != nil
}

// SplitSum returns the sum of the present share columns.
func (r LedgerRow) SplitSum() int64 {
	var sum int64
	for _, v := range []*int64{r.CreatorShare, r.PlatformShare, r.EcosystemShare, r.HolderShare} {
		if v != nil {
			sum += *v
		}
	}
	return sum
}
