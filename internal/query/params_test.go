package query

import (
	"net/url"
	"testing"
	"time"

	"rewardledger/internal/model"
	"rewardledger/internal/storage"
)

func TestParseHistoryParamsDefaults(t *testing.T) {
	f, err := ParseHistoryParams(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Limit != storage.DefaultLimit {
		t.Fatalf("default limit mismatch: %d", f.Limit)
	}
	if f.Offset != 0 {
		t.Fatalf("default offset mismatch: %d", f.Offset)
	}
	if f.Order != storage.SortDesc {
		t.Fatalf("default order mismatch: %s", f.Order)
	}
}

func TestParseHistoryParamsLimitCapped(t *testing.T) {
	f, err := ParseHistoryParams(url.Values{"limit": {"5000"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Limit != storage.MaxLimit {
		t.Fatalf("limit not capped: %d", f.Limit)
	}
}

func TestParseHistoryParamsTypedFilters(t *testing.T) {
	f, err := ParseHistoryParams(url.Values{
		"wallet":           {"walletA"},
		"pool_type":        {"global_holder"},
		"transaction_type": {"reward_claim"},
		"sort":             {"asc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Wallet != "walletA" {
		t.Fatalf("wallet mismatch: %s", f.Wallet)
	}
	if f.PoolType == nil || *f.PoolType != model.PoolGlobalHolder {
		t.Fatalf("pool type mismatch: %v", f.PoolType)
	}
	if f.TransactionType == nil || *f.TransactionType != model.TxRewardClaim {
		t.Fatalf("transaction type mismatch: %v", f.TransactionType)
	}
	if f.Order != storage.SortAsc {
		t.Fatalf("order mismatch: %s", f.Order)
	}
}

func TestParseHistoryParamsRejectsInvalid(t *testing.T) {
	invalid := []url.Values{
		{"pool_type": {"volcano"}},
		{"transaction_type": {"barter"}},
		{"limit": {"-1"}},
		{"limit": {"ten"}},
		{"offset": {"-3"}},
		{"sort": {"sideways"}},
	}
	for _, values := range invalid {
		if _, err := ParseHistoryParams(values); err == nil {
			t.Fatalf("expected error for %v", values)
		}
	}
}

func TestParseExportParamsIdentity(t *testing.T) {
	req, err := ParseExportParams(url.Values{"type": {"user"}, "wallet": {"walletA"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != "user" || req.Filter.Wallet != "walletA" {
		t.Fatalf("user request mismatch: %+v", req)
	}
	if req.Format != FormatCSV {
		t.Fatalf("default format mismatch: %s", req.Format)
	}
	if req.Filter.Order != storage.SortAsc || req.Filter.Limit != storage.MaxLimit {
		t.Fatalf("export paging mismatch: %+v", req.Filter)
	}

	req, err = ParseExportParams(url.Values{"type": {"creator"}, "creator": {"creatorX"}, "format": {"json"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != "creator" || req.Filter.Creator != "creatorX" || req.Format != FormatJSON {
		t.Fatalf("creator request mismatch: %+v", req)
	}
}

func TestParseExportParamsRejectsInvalid(t *testing.T) {
	invalid := []url.Values{
		{},
		{"type": {"user"}},
		{"type": {"creator"}},
		{"type": {"pool"}, "wallet": {"walletA"}},
		{"type": {"user"}, "wallet": {"walletA"}, "format": {"xml"}},
		{"type": {"user"}, "wallet": {"walletA"}, "start_date": {"yesterday"}},
	}
	for _, values := range invalid {
		if _, err := ParseExportParams(values); err == nil {
			t.Fatalf("expected error for %v", values)
		}
	}
}

func TestParseExportParamsDates(t *testing.T) {
	req, err := ParseExportParams(url.Values{
		"type":       {"user"},
		"wallet":     {"walletA"},
		"start_date": {"2025-05-01"},
		"end_date":   {"2025-05-02"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantStart := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	if req.Filter.StartTime == nil || !req.Filter.StartTime.Equal(wantStart) {
		t.Fatalf("start time mismatch: %v", req.Filter.StartTime)
	}
	// A bare end date covers the whole day.
	wantEnd := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if req.Filter.EndTime == nil || !req.Filter.EndTime.Equal(wantEnd) {
		t.Fatalf("end time mismatch: %v", req.Filter.EndTime)
	}

	req, err = ParseExportParams(url.Values{
		"type":     {"user"},
		"wallet":   {"walletA"},
		"end_date": {"2025-05-02T10:30:00Z"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantEnd = time.Date(2025, 5, 2, 10, 30, 0, 0, time.UTC)
	if req.Filter.EndTime == nil || !req.Filter.EndTime.Equal(wantEnd) {
		t.Fatalf("timestamp end mismatch: %v", req.Filter.EndTime)
	}
}
