package query

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"rewardledger/internal/model"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Exporter streams ledger rows to an output. WriteRows may be called
// repeatedly (one store page at a time); Close finalizes the output.
type Exporter interface {
	WriteRows(rows []model.LedgerRow) error
	Close() error
}

// NewExporter builds the exporter for a format.
func NewExporter(format Format, w io.Writer) (Exporter, error) {
	switch format {
	case FormatCSV:
		return &csvExporter{w: csv.NewWriter(w)}, nil
	case FormatJSON:
		return &jsonExporter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

var csvHeader = []string{
	"signature", "block_time", "slot", "transaction_type",
	"pool_type", "pool_id", "amount",
	"creator_share", "platform_share", "ecosystem_share", "holder_share",
	"source_wallet", "creator_wallet", "receiver_wallet", "content_pubkey", "nft_asset",
}

// csvExporter writes RFC 4180 CSV: fields containing the delimiter, a
// quote, or a newline come out quoted with internal quotes doubled.
type csvExporter struct {
	w           *csv.Writer
	wroteHeader bool
}

func (e *csvExporter) WriteRows(rows []model.LedgerRow) error {
	if !e.wroteHeader {
		if err := e.w.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		e.wroteHeader = true
	}
	for _, row := range rows {
		if err := e.w.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("write csv row %s/%d: %w", row.Signature, row.EventOrdinal, err)
		}
	}
	return nil
}

func (e *csvExporter) Close() error {
	if !e.wroteHeader {
		if err := e.w.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	e.w.Flush()
	return e.w.Error()
}

func csvRecord(row model.LedgerRow) []string {
	return []string{
		row.Signature,
		row.BlockTime.UTC().Format(time.RFC3339),
		strconv.FormatUint(row.Slot, 10),
		string(row.TransactionType),
		optPoolType(row.PoolType),
		deref(row.PoolID),
		DisplayUnits(row.Amount),
		optDisplay(row.CreatorShare),
		optDisplay(row.PlatformShare),
		optDisplay(row.EcosystemShare),
		optDisplay(row.HolderShare),
		row.SourceWallet,
		deref(row.CreatorWallet),
		deref(row.ReceiverWallet),
		deref(row.ContentPubkey),
		deref(row.NftAsset),
	}
}

type jsonExportRecord struct {
	Signature       string  `json:"signature"`
	BlockTime       string  `json:"block_time"`
	Slot            uint64  `json:"slot"`
	TransactionType string  `json:"transaction_type"`
	PoolType        *string `json:"pool_type,omitempty"`
	PoolID          *string `json:"pool_id,omitempty"`
	Amount          string  `json:"amount"`
	CreatorShare    *string `json:"creator_share,omitempty"`
	PlatformShare   *string `json:"platform_share,omitempty"`
	EcosystemShare  *string `json:"ecosystem_share,omitempty"`
	HolderShare     *string `json:"holder_share,omitempty"`
	SourceWallet    string  `json:"source_wallet"`
	CreatorWallet   *string `json:"creator_wallet,omitempty"`
	ReceiverWallet  *string `json:"receiver_wallet,omitempty"`
	ContentPubkey   *string `json:"content_pubkey,omitempty"`
	NftAsset        *string `json:"nft_asset,omitempty"`
}

// jsonExporter writes one JSON array across all pages.
type jsonExporter struct {
	w       io.Writer
	started bool
}

func (e *jsonExporter) WriteRows(rows []model.LedgerRow) error {
	for _, row := range rows {
		sep := ","
		if !e.started {
			sep = "["
			e.started = true
		}
		record, err := json.Marshal(jsonRecord(row))
		if err != nil {
			return fmt.Errorf("marshal export row %s/%d: %w", row.Signature, row.EventOrdinal, err)
		}
		if _, err := io.WriteString(e.w, sep); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
		if _, err := e.w.Write(record); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}
	return nil
}

func (e *jsonExporter) Close() error {
	if !e.started {
		_, err := io.WriteString(e.w, "[]")
		return err
	}
	_, err := io.WriteString(e.w, "]")
	return err
}

func jsonRecord(row model.LedgerRow) jsonExportRecord {
	rec := jsonExportRecord{
		Signature:       row.Signature,
		BlockTime:       row.BlockTime.UTC().Format(time.RFC3339),
		Slot:            row.Slot,
		TransactionType: string(row.TransactionType),
		PoolID:          row.PoolID,
		Amount:          DisplayUnits(row.Amount),
		CreatorShare:    optDisplayPtr(row.CreatorShare),
		PlatformShare:   optDisplayPtr(row.PlatformShare),
		EcosystemShare:  optDisplayPtr(row.EcosystemShare),
		HolderShare:     optDisplayPtr(row.HolderShare),
		SourceWallet:    row.SourceWallet,
		CreatorWallet:   row.CreatorWallet,
		ReceiverWallet:  row.ReceiverWallet,
		ContentPubkey:   row.ContentPubkey,
		NftAsset:        row.NftAsset,
	}
	if row.PoolType != nil {
		s := string(*row.PoolType)
		rec.PoolType = &s
	}
	return rec
}

// ExportFilename builds the date-stamped attachment name.
func ExportFilename(kind string, format Format, now time.Time) string {
	return fmt.Sprintf("reward_ledger_%s_%s.%s", kind, now.UTC().Format("2006-01-02"), format)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optPoolType(p *model.PoolType) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

func optDisplay(v *int64) string {
	if v == nil {
		return ""
	}
	return DisplayUnits(*v)
}

func optDisplayPtr(v *int64) *string {
	if v == nil {
		return nil
	}
	s := DisplayUnits(*v)
	return &s
}
