package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"rewardledger/internal/model"
	"rewardledger/internal/storage"
)

// flakyStore fails each InsertLedgerRow a fixed number of times before
// delegating to the in-memory store.
type flakyStore struct {
	*storage.MemoryStore
	failures int
}

func (s *flakyStore) InsertLedgerRow(ctx context.Context, row model.LedgerRow) (bool, error) {
	if s.failures > 0 {
		s.failures--
		return false, errors.New("transient store error")
	}
	return s.MemoryStore.InsertLedgerRow(ctx, row)
}

func testLedgerRow(signature string, ordinal int) model.LedgerRow {
	return model.LedgerRow{
		Signature:       signature,
		EventOrdinal:    ordinal,
		BlockTime:       time.Unix(1700000000, 0).UTC(),
		TransactionType: model.TxMint,
		SourceWallet:    "walletA",
		Amount:          10,
	}
}

func TestLoaderRetriesTransientErrors(t *testing.T) {
	store := &flakyStore{MemoryStore: storage.NewMemoryStore(), failures: 2}
	loader := NewLoader(store, nil, 3, time.Millisecond)

	res := loader.Apply(context.Background(), []Mutation{
		InsertLedgerRow{Row: testLedgerRow("sigRetry", 0)},
	})
	if res.Failed != 0 || res.Inserted != 1 {
		t.Fatalf("retry did not recover: %+v", res)
	}
}

func TestLoaderReportsExhaustedRetries(t *testing.T) {
	// Three failures exhaust an initial attempt plus two retries.
	store := &flakyStore{MemoryStore: storage.NewMemoryStore(), failures: 3}
	loader := NewLoader(store, nil, 2, time.Millisecond)

	res := loader.Apply(context.Background(), []Mutation{
		InsertLedgerRow{Row: testLedgerRow("sigFail", 0)},
		InsertLedgerRow{Row: testLedgerRow("sigAfter", 0)},
	})
	if res.Failed != 1 || len(res.Errors) != 1 {
		t.Fatalf("expected 1 failure, got %+v", res)
	}
	// The row after the failed one still lands.
	if res.Inserted != 1 {
		t.Fatalf("subsequent row not applied: %+v", res)
	}
}

func TestLoaderCountsDuplicates(t *testing.T) {
	store := storage.NewMemoryStore()
	loader := NewLoader(store, nil, 0, 0)
	muts := []Mutation{InsertLedgerRow{Row: testLedgerRow("sigDupRow", 0)}}

	first := loader.Apply(context.Background(), muts)
	if first.Inserted != 1 || first.Duplicates != 0 {
		t.Fatalf("first apply mismatch: %+v", first)
	}
	second := loader.Apply(context.Background(), muts)
	if second.Inserted != 0 || second.Duplicates != 1 || second.Failed != 0 {
		t.Fatalf("second apply mismatch: %+v", second)
	}
}
