package ingest

import (
	"testing"
	"time"

	"rewardledger/internal/model"
)

func domainEvent(signature string, ordinal int, payload model.EventPayload) model.DomainEvent {
	return model.DomainEvent{
		Signature: signature,
		Slot:      42,
		BlockTime: time.Unix(1700000000, 0).UTC(),
		Ordinal:   ordinal,
		Payload:   payload,
	}
}

func singleRow(t *testing.T, muts []Mutation, err error) model.LedgerRow {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(muts) != 1 {
		t.Fatalf("expected 1 mutation, got %d", len(muts))
	}
	insert, ok := muts[0].(InsertLedgerRow)
	if !ok {
		t.Fatalf("mutation type mismatch: %T", muts[0])
	}
	return insert.Row
}

func TestProjectRewardDepositedWithSplit(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigA", 0, model.RewardDepositedData{
		PoolType:      "content",
		PoolID:        "pool-1",
		Depositor:     "walletA",
		CreatorWallet: "creatorX",
		ContentPubkey: "contentY",
		Amount:        1000,
		Split: &model.FeeSplit{
			CreatorShare:   800,
			PlatformShare:  100,
			EcosystemShare: 60,
			HolderShare:    40,
		},
	})

	muts, err := router.Project(ev)
	row := singleRow(t, muts, err)
	if row.TransactionType != model.TxMint {
		t.Fatalf("transaction type mismatch: %s", row.TransactionType)
	}
	if row.PoolType == nil || *row.PoolType != model.PoolContent {
		t.Fatalf("pool type mismatch: %v", row.PoolType)
	}
	if row.Amount != 1000 {
		t.Fatalf("amount mismatch: %d", row.Amount)
	}
	if !row.HasFullSplit() {
		t.Fatalf("expected full split: %+v", row)
	}
	if row.SplitSum() != row.Amount {
		t.Fatalf("split sum %d != amount %d", row.SplitSum(), row.Amount)
	}
	if row.SourceWallet != "walletA" {
		t.Fatalf("source wallet mismatch: %s", row.SourceWallet)
	}
	if row.CreatorWallet == nil || *row.CreatorWallet != "creatorX" {
		t.Fatalf("creator wallet mismatch: %v", row.CreatorWallet)
	}
}

func TestProjectRewardDepositedWithoutSplit(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigB", 0, model.RewardDepositedData{
		PoolType:  "bundle",
		Depositor: "walletA",
		Amount:    500,
	})

	muts, err := router.Project(ev)
	row := singleRow(t, muts, err)
	// Absent split stores null, not zero: "no split recorded" and "split
	// recorded as zero" are different facts.
	if row.CreatorShare != nil || row.PlatformShare != nil || row.EcosystemShare != nil || row.HolderShare != nil {
		t.Fatalf("expected null shares: %+v", row)
	}
}

func TestProjectRewardDepositedSplitMismatch(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigC", 0, model.RewardDepositedData{
		PoolType:  "content",
		Depositor: "walletA",
		Amount:    1000,
		Split: &model.FeeSplit{
			CreatorShare:   800,
			PlatformShare:  100,
			EcosystemShare: 60,
			HolderShare:    41,
		},
	})

	if _, err := router.Project(ev); err == nil {
		t.Fatalf("expected split mismatch error")
	}
}

func TestProjectRewardDepositedMissingDepositor(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigD", 0, model.RewardDepositedData{
		PoolType: "content",
		Amount:   100,
	})

	if _, err := router.Project(ev); err == nil {
		t.Fatalf("expected missing depositor error")
	}
}

func TestProjectRewardsDistributedKinds(t *testing.T) {
	router := NewRouter()

	cases := []struct {
		kind string
		want model.TransactionType
	}{
		{"patron", model.TxPatronSubscription},
		{"ecosystem", model.TxEcosystemSubscription},
	}
	for _, tc := range cases {
		ev := domainEvent("sigE", 0, model.RewardsDistributedData{
			Kind:       tc.kind,
			Subscriber: "walletS",
			Amount:     250,
		})
		muts, err := router.Project(ev)
		row := singleRow(t, muts, err)
		if row.TransactionType != tc.want {
			t.Fatalf("kind %s: transaction type mismatch: %s", tc.kind, row.TransactionType)
		}
		// Distribution fans out across pools; no single pool attribution.
		if row.PoolType != nil {
			t.Fatalf("kind %s: expected null pool type", tc.kind)
		}
	}
}

func TestProjectRewardsClaimedDebtCopied(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigF", 1, model.RewardsClaimedData{
		Claimer:    "walletB",
		PoolType:   "global_holder",
		PoolID:     "pool-9",
		Amount:     77,
		DebtBefore: 100,
		DebtAfter:  177,
	})

	muts, err := router.Project(ev)
	row := singleRow(t, muts, err)
	if row.TransactionType != model.TxRewardClaim {
		t.Fatalf("transaction type mismatch: %s", row.TransactionType)
	}
	if row.EventOrdinal != 1 {
		t.Fatalf("ordinal mismatch: %d", row.EventOrdinal)
	}
	if row.DebtBefore == nil || *row.DebtBefore != 100 {
		t.Fatalf("debt before mismatch: %v", row.DebtBefore)
	}
	if row.DebtAfter == nil || *row.DebtAfter != 177 {
		t.Fatalf("debt after mismatch: %v", row.DebtAfter)
	}
}

func TestProjectRewardsTransferredDualWallet(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigG", 0, model.RewardsTransferredData{
		Sender:   "walletFrom",
		Receiver: "walletTo",
		Amount:   33,
	})

	muts, err := router.Project(ev)
	row := singleRow(t, muts, err)
	if row.TransactionType != model.TxRewardTransfer {
		t.Fatalf("transaction type mismatch: %s", row.TransactionType)
	}
	if row.SourceWallet != "walletFrom" {
		t.Fatalf("source wallet mismatch: %s", row.SourceWallet)
	}
	if row.ReceiverWallet == nil || *row.ReceiverWallet != "walletTo" {
		t.Fatalf("receiver wallet mismatch: %v", row.ReceiverWallet)
	}
}

func TestProjectSubscriptionLifecycle(t *testing.T) {
	router := NewRouter()

	created := domainEvent("sigH", 0, model.SubscriptionCreatedData{
		StreamID:        "stream-1",
		Subscriber:      "walletS",
		CreatorWallet:   "creatorX",
		Kind:            "patron",
		AmountPerPeriod: 1000,
	})
	muts, err := router.Project(created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(muts) != 1 {
		t.Fatalf("expected 1 mutation, got %d", len(muts))
	}
	create, ok := muts[0].(CreateSubscription)
	if !ok {
		t.Fatalf("mutation type mismatch: %T", muts[0])
	}
	if !create.Sub.IsActive || create.Sub.StreamID != "stream-1" {
		t.Fatalf("subscription mismatch: %+v", create.Sub)
	}

	cancelled := domainEvent("sigI", 0, model.SubscriptionCancelledData{StreamID: "stream-1"})
	muts, err = router.Project(cancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel, ok := muts[0].(CancelSubscription)
	if !ok {
		t.Fatalf("mutation type mismatch: %T", muts[0])
	}
	if cancel.StreamID != "stream-1" {
		t.Fatalf("stream id mismatch: %s", cancel.StreamID)
	}
}

func TestProjectNftMintedNoRow(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigJ", 0, model.NftMintedData{NftAsset: "asset1", Owner: "walletO"})

	muts, err := router.Project(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(muts) != 0 {
		t.Fatalf("expected no mutations, got %d", len(muts))
	}
}

func TestProjectUnrecognizedIgnored(t *testing.T) {
	router := NewRouter()
	ev := domainEvent("sigK", 0, model.UnrecognizedData{Name: "FutureEvent"})

	muts, err := router.Project(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(muts) != 0 {
		t.Fatalf("expected no mutations, got %d", len(muts))
	}
}
