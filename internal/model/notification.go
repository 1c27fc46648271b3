package model

import "time"

// TransactionNotification is one ledger transaction as delivered by the
// webhook source. It is transient input; only projected rows are persisted.
type TransactionNotification struct {
	Signature string   `json:"signature"`
	Slot      uint64   `json:"slot"`
	BlockTime int64    `json:"blockTime,omitempty"`
	LogLines  []string `json:"logLines"`
}

// BlockTimeOrDefault resolves the block time, falling back to the given
// receipt time when the source omitted it.
func (n TransactionNotification) BlockTimeOrDefault(receipt time.Time) time.Time {
	if n.BlockTime <= 0 {
		return receipt.UTC()
	}
	return time.Unix(n.BlockTime, 0).UTC()
}
