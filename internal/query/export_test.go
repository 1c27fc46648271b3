package query

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"rewardledger/internal/model"
)

func strPtr(s string) *string { return &s }

func intPtr(v int64) *int64 { return &v }

func exportRow() model.LedgerRow {
	pool := model.PoolContent
	return model.LedgerRow{
		Signature:       "sigA",
		EventOrdinal:    0,
		BlockTime:       time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		Slot:            99,
		TransactionType: model.TxMint,
		PoolType:        &pool,
		PoolID:          strPtr("pool-1"),
		Amount:          1_000_000_000,
		CreatorShare:    intPtr(800_000_000),
		PlatformShare:   intPtr(100_000_000),
		EcosystemShare:  intPtr(60_000_000),
		HolderShare:     intPtr(40_000_000),
		SourceWallet:    "walletA",
		CreatorWallet:   strPtr("creatorX"),
	}
}

func TestCSVExport(t *testing.T) {
	var buf bytes.Buffer
	exp, err := NewExporter(FormatCSV, &buf)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	if err := exp.WriteRows([]model.LedgerRow{exportRow()}); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	if err := exp.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[0][0] != "signature" || len(records[0]) != len(csvHeader) {
		t.Fatalf("header mismatch: %v", records[0])
	}
	row := records[1]
	if row[0] != "sigA" || row[1] != "2025-05-01T12:00:00Z" || row[2] != "99" {
		t.Fatalf("row prefix mismatch: %v", row)
	}
	if row[6] != "1.000000000" || row[7] != "0.800000000" {
		t.Fatalf("display amounts mismatch: %v", row)
	}
}

func TestCSVExportEscapesSpecialCharacters(t *testing.T) {
	row := exportRow()
	row.PoolID = strPtr("pool,with \"quotes\"\nand newline")

	var buf bytes.Buffer
	exp, _ := NewExporter(FormatCSV, &buf)
	if err := exp.WriteRows([]model.LedgerRow{row}); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	if err := exp.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(buf.String(), `"pool,with ""quotes""`) {
		t.Fatalf("field not quoted: %q", buf.String())
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := records[1][5]; got != *row.PoolID {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestCSVExportEmptyIsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	exp, _ := NewExporter(FormatCSV, &buf)
	if err := exp.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 1 || records[0][0] != "signature" {
		t.Fatalf("expected header only, got %v", records)
	}
}

func TestJSONExport(t *testing.T) {
	second := exportRow()
	second.Signature = "sigB"
	second.EventOrdinal = 1
	second.CreatorShare = nil
	second.PlatformShare = nil
	second.EcosystemShare = nil
	second.HolderShare = nil

	var buf bytes.Buffer
	exp, err := NewExporter(FormatJSON, &buf)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	// Pages arrive separately; the output is still one array.
	if err := exp.WriteRows([]model.LedgerRow{exportRow()}); err != nil {
		t.Fatalf("write page 1: %v", err)
	}
	if err := exp.WriteRows([]model.LedgerRow{second}); err != nil {
		t.Fatalf("write page 2: %v", err)
	}
	if err := exp.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["signature"] != "sigA" || got[0]["amount"] != "1.000000000" {
		t.Fatalf("first record mismatch: %v", got[0])
	}
	if got[0]["creator_share"] != "0.800000000" {
		t.Fatalf("share mismatch: %v", got[0])
	}
	if _, ok := got[1]["creator_share"]; ok {
		t.Fatalf("null share should be omitted: %v", got[1])
	}
}

func TestJSONExportEmptyIsEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	exp, _ := NewExporter(FormatJSON, &buf)
	if err := exp.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if buf.String() != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 5, 1, 23, 59, 0, 0, time.UTC)
	if got := ExportFilename("user", FormatCSV, now); got != "reward_ledger_user_2025-05-01.csv" {
		t.Fatalf("filename mismatch: %q", got)
	}
	if got := ExportFilename("creator", FormatJSON, now); got != "reward_ledger_creator_2025-05-01.json" {
		t.Fatalf("filename mismatch: %q", got)
	}
}
