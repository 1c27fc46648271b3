package model

// TransactionFailure is the per-item error detail of an ingestion run.
type TransactionFailure struct {
	Signature string `json:"signature"`
	Ordinal   *int   `json:"ordinal,omitempty"`
	Error     string `json:"error"`
}

// IngestionSummary is the outcome of one webhook batch. Processed counts
// handled transactions; Errors counts failed items (events or writes), not
// failed batches.
type IngestionSummary struct {
	Processed int                  `json:"processed"`
	Errors    int                  `json:"errors"`
	Failures  []TransactionFailure `json:"failures,omitempty"`
}

// WalletSummary aggregates one wallet's ledger activity: row counts per
// transaction type and claimed base-unit totals per pool type.
type WalletSummary struct {
	Wallet            string                    `json:"wallet"`
	TransactionCounts map[TransactionType]int64 `json:"transaction_counts"`
	EarningsByPool    map[PoolType]int64        `json:"earnings_by_pool"`
	TotalEarned       int64                     `json:"total_earned_base_units"`
}
