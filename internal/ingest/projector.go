package ingest

import (
	"fmt"

	"rewardledger/internal/model"
)

// Projection is pure: each function maps one decoded event to the rows it
// implies, deriving the accounting fields. All amounts stay integer base
// units; absent fee splits project to null columns, never zero.

func projectRewardDeposited(ev model.DomainEvent) ([]Mutation, error) {
	d, ok := ev.Payload.(model.RewardDepositedData)
	if !ok {
		return nil, fmt.Errorf("reward deposit: unexpected payload %T", ev.Payload)
	}
	if d.Depositor == "" {
		return nil, fmt.Errorf("reward deposit missing depositor")
	}
	if d.Amount < 0 {
		return nil, fmt.Errorf("reward deposit negative amount %d", d.Amount)
	}
	poolType, err := model.ParsePoolType(d.PoolType)
	if err != nil {
		return nil, fmt.Errorf("reward deposit: %w", err)
	}

	row := baseRow(ev, model.TxMint)
	row.PoolType = &poolType
	row.PoolID = optStr(d.PoolID)
	row.Amount = d.Amount
	row.SourceWallet = d.Depositor
	row.CreatorWallet = optStr(d.CreatorWallet)
	row.ContentPubkey = optStr(d.ContentPubkey)
	if err := applySplit(&row, d.Split, d.Amount); err != nil {
		return nil, fmt.Errorf("reward deposit: %w", err)
	}
	return []Mutation{InsertLedgerRow{Row: row}}, nil
}

func projectRewardsDistributed(ev model.DomainEvent) ([]Mutation, error) {
	d, ok := ev.Payload.(model.RewardsDistributedData)
	if !ok {
		return nil, fmt.Errorf("reward distribution: unexpected payload %T", ev.Payload)
	}
	if d.Subscriber == "" {
		return nil, fmt.Errorf("reward distribution missing subscriber")
	}
	if d.Amount < 0 {
		return nil, fmt.Errorf("reward distribution negative amount %d", d.Amount)
	}
	kind, err := model.ParseSubscriptionKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("reward distribution: %w", err)
	}
	txType := model.TxPatronSubscription
	if kind == model.SubscriptionEcosystem {
		txType = model.TxEcosystemSubscription
	}

	// pool_type stays null: a distribution fans out across several pools at
	// once, and per-pool detail lives in the share columns.
	row := baseRow(ev, txType)
	row.Amount = d.Amount
	row.SourceWallet = d.Subscriber
	row.CreatorWallet = optStr(d.CreatorWallet)
	if err := applySplit(&row, d.Split, d.Amount); err != nil {
		return nil, fmt.Errorf("reward distribution: %w", err)
	}
	return []Mutation{InsertLedgerRow{Row: row}}, nil
}

func projectRewardsClaimed(ev model.DomainEvent) ([]Mutation, error) {
	d, ok := ev.Payload.(model.RewardsClaimedData)
	if !ok {
		return nil, fmt.Errorf("reward claim: unexpected payload %T", ev.Payload)
	}
	if d.Claimer == "" {
		return nil, fmt.Errorf("reward claim missing claimer")
	}
	if d.Amount < 0 {
		return nil, fmt.Errorf("reward claim negative amount %d", d.Amount)
	}
	poolType, err := model.ParsePoolType(d.PoolType)
	if err != nil {
		return nil, fmt.Errorf("reward claim: %w", err)
	}

	row := baseRow(ev, model.TxRewardClaim)
	row.PoolType = &poolType
	row.PoolID = optStr(d.PoolID)
	row.Amount = d.Amount
	row.SourceWallet = d.Claimer
	row.NftAsset = optStr(d.NftAsset)
	row.NftWeight = d.NftWeight
	// Debt values are copied verbatim; the reporting side compares them to
	// detect double-claim anomalies.
	row.DebtBefore = optInt(d.DebtBefore)
	row.DebtAfter = optInt(d.DebtAfter)
	return []Mutation{InsertLedgerRow{Row: row}}, nil
}

func projectRewardsTransferred(ev model.DomainEvent) ([]Mutation, error) {
	d, ok := ev.Payload.(model.RewardsTransferredData)
	if !ok {
		return nil, fmt.Errorf("reward transfer: unexpected payload %T", ev.Payload)
	}
	if d.Sender == "" || d.Receiver == "" {
		return nil, fmt.Errorf("reward transfer missing sender or receiver")
	}
	if d.Amount < 0 {
		return nil, fmt.Errorf("reward transfer negative amount %d", d.Amount)
	}

	row := baseRow(ev, model.TxRewardTransfer)
	row.Amount = d.Amount
	row.SourceWallet = d.Sender
	row.ReceiverWallet = optStr(d.Receiver)
	row.NftAsset = optStr(d.NftAsset)
	row.DebtBefore = optInt(d.DebtBefore)
	row.DebtAfter = optInt(d.DebtAfter)
	return []Mutation{InsertLedgerRow{Row: row}}, nil
}

func projectSubscriptionCreated(ev model.DomainEvent) ([]Mutation, error) {
	d, ok := ev.Payload.(model.SubscriptionCreatedData)
	if !ok {
		return nil, fmt.Errorf("subscription created: unexpected payload %T", ev.Payload)
	}
	if d.StreamID == "" {
		return nil, fmt.Errorf("subscription created missing stream_id")
	}
	if d.Subscriber == "" || d.CreatorWallet == "" {
		return nil, fmt.Errorf("subscription created missing subscriber or creator")
	}
	kind, err := model.ParseSubscriptionKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("subscription created: %w", err)
	}

	return []Mutation{CreateSubscription{Sub: model.Subscription{
		StreamID:        d.StreamID,
		Subscriber:      d.Subscriber,
		CreatorWallet:   d.CreatorWallet,
		Kind:            kind,
		AmountPerPeriod: d.AmountPerPeriod,
		IsActive:        true,
		StartedAt:       ev.BlockTime,
	}}}, nil
}

func projectSubscriptionCancelled(ev model.DomainEvent) ([]Mutation, error) {
	d, ok := ev.Payload.(model.SubscriptionCancelledData)
	if !ok {
		return nil, fmt.Errorf("subscription cancelled: unexpected payload %T", ev.Payload)
	}
	if d.StreamID == "" {
		return nil, fmt.Errorf("subscription cancelled missing stream_id")
	}
	return []Mutation{CancelSubscription{StreamID: d.StreamID, At: ev.BlockTime}}, nil
}

// NftMinted is informational: fee-split authority for mints is
// RewardDeposited, so nothing is persisted here.
func projectNftMinted(ev model.DomainEvent) ([]Mutation, error) {
	if _, ok := ev.Payload.(model.NftMintedData); !ok {
		return nil, fmt.Errorf("nft mint: unexpected payload %T", ev.Payload)
	}
	return nil, nil
}

func baseRow(ev model.DomainEvent, txType model.TransactionType) model.LedgerRow {
	return model.LedgerRow{
		Signature:       ev.Signature,
		EventOrdinal:    ev.Ordinal,
		BlockTime:       ev.BlockTime,
		Slot:            ev.Slot,
		TransactionType: txType,
		EventData:       ev.Raw,
	}
}

// applySplit copies an optional fee split onto the row. When present, the
// shares must sum to the row amount.
func applySplit(row *model.LedgerRow, split *model.FeeSplit, amount int64) error {
	if split == nil {
		return nil
	}
	if sum := split.Sum(); sum != amount {
		return fmt.Errorf("fee split sum %d does not match amount %d", sum, amount)
	}
	row.CreatorShare = optInt(split.CreatorShare)
	row.PlatformShare = optInt(split.PlatformShare)
	row.EcosystemShare = optInt(split.EcosystemShare)
	row.HolderShare = optInt(split.HolderShare)
	return nil
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(v int64) *int64 {
	return &v
}
