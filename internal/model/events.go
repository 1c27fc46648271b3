package model

// FeeSplit is the per-beneficiary breakdown of one deposited amount.
// All values are integer base units.
type FeeSplit struct {
	CreatorShare   int64 `json:"creator_share"`
	PlatformShare  int64 `json:"platform_share"`
	EcosystemShare int64 `json:"ecosystem_share"`
	HolderShare    int64 `json:"holder_share"`
}

// Sum returns the total of all four shares.
func (s FeeSplit) Sum() int64 {
	return s.CreatorShare + s.PlatformShare + s.EcosystemShare + s.HolderShare
}

// RewardDepositedData is the decoded RewardDeposited event payload.
type RewardDepositedData struct {
	PoolType      string    `json:"pool_type"`
	PoolID        string    `json:"pool_id"`
	Depositor     string    `json:"depositor"`
	CreatorWallet string    `json:"creator_wallet,omitempty"`
	ContentPubkey string    `json:"content_pubkey,omitempty"`
	Amount        int64     `json:"amount"`
	Split         *FeeSplit `json:"split,omitempty"`
}

// RewardsDistributedData is the decoded RewardsDistributed event payload.
// Distribution fans out across multiple pools at once, so it carries no
// single pool attribution.
type RewardsDistributedData struct {
	Kind          string    `json:"kind"`
	Subscriber    string    `json:"subscriber"`
	CreatorWallet string    `json:"creator_wallet,omitempty"`
	Amount        int64     `json:"amount"`
	Split         *FeeSplit `json:"split,omitempty"`
}

// RewardsClaimedData is the decoded RewardsClaimed event payload.
type RewardsClaimedData struct {
	Claimer    string `json:"claimer"`
	PoolType   string `json:"pool_type"`
	PoolID     string `json:"pool_id"`
	Amount     int64  `json:"amount"`
	NftAsset   string `json:"nft_asset,omitempty"`
	NftWeight  *int64 `json:"nft_weight,omitempty"`
	DebtBefore int64  `json:"debt_before"`
	DebtAfter  int64  `json:"debt_after"`
}

// RewardsTransferredData is the decoded RewardsTransferred event payload.
// Amount is the sender's claimed-at-transfer-time amount.
type RewardsTransferredData struct {
	Sender     string `json:"sender"`
	Receiver   string `json:"receiver"`
	NftAsset   string `json:"nft_asset,omitempty"`
	Amount     int64  `json:"amount"`
	DebtBefore int64  `json:"debt_before"`
	DebtAfter  int64  `json:"debt_after"`
}

// SubscriptionCreatedData is the decoded SubscriptionCreated event payload.
type SubscriptionCreatedData struct {
	StreamID        string `json:"stream_id"`
	Subscriber      string `json:"subscriber"`
	CreatorWallet   string `json:"creator_wallet"`
	Kind            string `json:"kind"`
	AmountPerPeriod int64  `json:"amount_per_period"`
}

// SubscriptionCancelledData is the decoded SubscriptionCancelled event payload.
type SubscriptionCancelledData struct {
	StreamID string `json:"stream_id"`
}

// NftMintedData is the decoded NftMinted event payload. Informational only;
// fee-split authority for mints is RewardDeposited.
type NftMintedData struct {
	NftAsset      string `json:"nft_asset"`
	Owner         string `json:"owner"`
	ContentPubkey string `json:"content_pubkey,omitempty"`
	Weight        *int64 `json:"weight,omitempty"`
}

// UnrecognizedData marks a well-framed event whose name the pipeline does
// not know yet. It keeps ordinals aligned and routes to a no-op.
type UnrecognizedData struct {
	Name string `json:"name"`
}
