package query

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"rewardledger/internal/model"
	"rewardledger/internal/storage"
)

// ParseHistoryParams builds a ledger filter from history query parameters.
// Validation failures are returned before any store access happens.
func ParseHistoryParams(values url.Values) (storage.LedgerFilter, error) {
	var f storage.LedgerFilter
	f.Wallet = values.Get("wallet")
	f.Creator = values.Get("creator")
	f.Content = values.Get("content")

	if s := values.Get("pool_type"); s != "" {
		poolType, err := model.ParsePoolType(s)
		if err != nil {
			return f, err
		}
		f.PoolType = &poolType
	}
	if s := values.Get("transaction_type"); s != "" {
		txType, err := model.ParseTransactionType(s)
		if err != nil {
			return f, err
		}
		f.TransactionType = &txType
	}
	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit: %q", s)
		}
		f.Limit = n
	}
	if s := values.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid offset: %q", s)
		}
		f.Offset = n
	}
	switch s := values.Get("sort"); s {
	case "", "desc":
		f.Order = storage.SortDesc
	case "asc":
		f.Order = storage.SortAsc
	default:
		return f, fmt.Errorf("sort must be \"asc\" or \"desc\", got %q", s)
	}

	f.Normalize()
	return f, nil
}

// ExportRequest is a validated export query.
type ExportRequest struct {
	Filter storage.LedgerFilter
	Format Format
	Kind   string // "user" or "creator", used in the attachment filename
}

// ParseExportParams builds an export request. type selects the identity
// column (user → wallet, creator → creator); start_date/end_date are
// inclusive block-time bounds.
func ParseExportParams(values url.Values) (ExportRequest, error) {
	var req ExportRequest

	switch kind := values.Get("type"); kind {
	case "user":
		req.Filter.Wallet = values.Get("wallet")
		if req.Filter.Wallet == "" {
			return req, fmt.Errorf("wallet is required for type=user")
		}
		req.Kind = kind
	case "creator":
		req.Filter.Creator = values.Get("creator")
		if req.Filter.Creator == "" {
			return req, fmt.Errorf("creator is required for type=creator")
		}
		req.Kind = kind
	default:
		return req, fmt.Errorf("type must be \"user\" or \"creator\", got %q", kind)
	}

	if s := values.Get("start_date"); s != "" {
		t, _, err := parseDate(s)
		if err != nil {
			return req, fmt.Errorf("invalid start_date: %w", err)
		}
		req.Filter.StartTime = &t
	}
	if s := values.Get("end_date"); s != "" {
		t, dateOnly, err := parseDate(s)
		if err != nil {
			return req, fmt.Errorf("invalid end_date: %w", err)
		}
		if dateOnly {
			// A bare date means the whole day, inclusive.
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		req.Filter.EndTime = &t
	}

	switch s := values.Get("format"); s {
	case "", "csv":
		req.Format = FormatCSV
	case "json":
		req.Format = FormatJSON
	default:
		return req, fmt.Errorf("format must be \"csv\" or \"json\", got %q", s)
	}

	req.Filter.Order = storage.SortAsc
	req.Filter.Limit = storage.MaxLimit
	return req, nil
}

func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err = time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("want RFC 3339 or 2006-01-02, got %q", s)
}
