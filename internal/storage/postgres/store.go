package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rewardledger/internal/model"
	"rewardledger/internal/storage"
)

// Store provides Postgres persistence for the reward ledger.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies the schema DDL. Safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// InsertLedgerRow commits one row, keyed on (signature, event_ordinal).
// A conflicting key is a silent no-op: first writer wins, later writers
// see inserted=false with no error.
func (s *Store) InsertLedgerRow(ctx context.Context, row model.LedgerRow) (bool, error) {
	var eventData []byte
	if len(row.EventData) > 0 {
		eventData = []byte(row.EventData)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO reward_transactions (
			signature, event_ordinal, block_time, slot, transaction_type,
			pool_type, pool_id, amount,
			creator_share, platform_share, ecosystem_share, holder_share,
			source_wallet, creator_wallet, receiver_wallet, content_pubkey,
			nft_asset, nft_weight, debt_before, debt_after, event_data
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (signature, event_ordinal) DO NOTHING
	`,
		row.Signature,
		row.EventOrdinal,
		row.BlockTime,
		int64(row.Slot),
		string(row.TransactionType),
		(*string)(row.PoolType),
		row.PoolID,
		row.Amount,
		row.CreatorShare,
		row.PlatformShare,
		row.EcosystemShare,
		row.HolderShare,
		row.SourceWallet,
		row.CreatorWallet,
		row.ReceiverWallet,
		row.ContentPubkey,
		row.NftAsset,
		row.NftWeight,
		row.DebtBefore,
		row.DebtAfter,
		eventData,
	)
	if err != nil {
		return false, fmt.Errorf("insert ledger row: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreateSubscription inserts a subscription; an existing stream_id stays
// untouched so redelivered SubscriptionCreated events are no-ops.
func (s *Store) CreateSubscription(ctx context.Context, sub model.Subscription) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (
			stream_id, subscriber, creator_wallet, kind, amount_per_period,
			is_active, started_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (stream_id) DO NOTHING
	`,
		sub.StreamID,
		sub.Subscriber,
		sub.CreatorWallet,
		string(sub.Kind),
		sub.AmountPerPeriod,
		sub.IsActive,
		sub.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// CancelSubscription deactivates a subscription. The first cancellation
// time sticks; repeat cancels and unknown streams are harmless.
func (s *Store) CancelSubscription(ctx context.Context, streamID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE subscriptions
		SET is_active = false,
		    cancelled_at = COALESCE(cancelled_at, $2),
		    updated_at = now()
		WHERE stream_id = $1
	`, streamID, at)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}

const ledgerColumns = `
	signature, event_ordinal, block_time, slot, transaction_type,
	pool_type, pool_id, amount,
	creator_share, platform_share, ecosystem_share, holder_share,
	source_wallet, creator_wallet, receiver_wallet, content_pubkey,
	nft_asset, nft_weight, debt_before, debt_after, event_data`

// QueryLedger returns one page of filtered rows plus the total count of the
// filtered set. Ordering is (block_time, signature, event_ordinal) so pages
// over fixed data are stable.
func (s *Store) QueryLedger(ctx context.Context, f storage.LedgerFilter) ([]model.LedgerRow, int64, error) {
	f.Normalize()

	conds := make([]string, 0, 7)
	args := make([]any, 0, 9)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Wallet != "" {
		p := arg(f.Wallet)
		conds = append(conds, fmt.Sprintf("(source_wallet = %s OR receiver_wallet = %s)", p, p))
	}
	if f.Creator != "" {
		conds = append(conds, fmt.Sprintf("creator_wallet = %s", arg(f.Creator)))
	}
	if f.Content != "" {
		conds = append(conds, fmt.Sprintf("content_pubkey = %s", arg(f.Content)))
	}
	if f.PoolType != nil {
		conds = append(conds, fmt.Sprintf("pool_type = %s", arg(string(*f.PoolType))))
	}
	if f.TransactionType != nil {
		conds = append(conds, fmt.Sprintf("transaction_type = %s", arg(string(*f.TransactionType))))
	}
	if f.StartTime != nil {
		conds = append(conds, fmt.Sprintf("block_time >= %s", arg(*f.StartTime)))
	}
	if f.EndTime != nil {
		conds = append(conds, fmt.Sprintf("block_time <= %s", arg(*f.EndTime)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	row := s.pool.QueryRow(ctx, "SELECT count(*) FROM reward_transactions"+where, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger rows: %w", err)
	}

	dir := "DESC"
	if f.Order == storage.SortAsc {
		dir = "ASC"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM reward_transactions%s ORDER BY block_time %s, signature %s, event_ordinal %s LIMIT %s OFFSET %s",
		ledgerColumns, where, dir, dir, dir, arg(f.Limit), arg(f.Offset),
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query ledger rows: %w", err)
	}
	defer rows.Close()

	out := make([]model.LedgerRow, 0, f.Limit)
	for rows.Next() {
		var r model.LedgerRow
		var slot int64
		var txType string
		var poolType *string
		var eventData []byte
		if err := rows.Scan(
			&r.Signature, &r.EventOrdinal, &r.BlockTime, &slot, &txType,
			&poolType, &r.PoolID, &r.Amount,
			&r.CreatorShare, &r.PlatformShare, &r.EcosystemShare, &r.HolderShare,
			&r.SourceWallet, &r.CreatorWallet, &r.ReceiverWallet, &r.ContentPubkey,
			&r.NftAsset, &r.NftWeight, &r.DebtBefore, &r.DebtAfter, &eventData,
		); err != nil {
			return nil, 0, fmt.Errorf("scan ledger row: %w", err)
		}
		r.Slot = uint64(slot)
		r.TransactionType = model.TransactionType(txType)
		r.PoolType = (*model.PoolType)(poolType)
		if len(eventData) > 0 {
			r.EventData = eventData
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return out, total, nil
}

// WalletSummary aggregates counts per transaction type and claimed totals
// per pool type for one wallet.
func (s *Store) WalletSummary(ctx context.Context, wallet string) (model.WalletSummary, error) {
	summary := model.WalletSummary{
		Wallet:            wallet,
		TransactionCounts: make(map[model.TransactionType]int64),
		EarningsByPool:    make(map[model.PoolType]int64),
	}

	rows, err := s.pool.Query(ctx, `
		SELECT transaction_type, count(*)
		FROM reward_transactions
		WHERE source_wallet = $1 OR receiver_wallet = $1
		GROUP BY transaction_type
	`, wallet)
	if err != nil {
		return model.WalletSummary{}, fmt.Errorf("summary counts: %w", err)
	}
	for rows.Next() {
		var txType string
		var count int64
		if err := rows.Scan(&txType, &count); err != nil {
			rows.Close()
			return model.WalletSummary{}, fmt.Errorf("scan summary count: %w", err)
		}
		summary.TransactionCounts[model.TransactionType(txType)] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.WalletSummary{}, fmt.Errorf("iterate summary counts: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT pool_type, sum(amount)
		FROM reward_transactions
		WHERE source_wallet = $1 AND transaction_type = $2
		GROUP BY pool_type
	`, wallet, string(model.TxRewardClaim))
	if err != nil {
		return model.WalletSummary{}, fmt.Errorf("summary earnings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var poolType *string
		var amount int64
		if err := rows.Scan(&poolType, &amount); err != nil {
			return model.WalletSummary{}, fmt.Errorf("scan summary earning: %w", err)
		}
		summary.TotalEarned += amount
		if poolType != nil {
			summary.EarningsByPool[model.PoolType(*poolType)] += amount
		}
	}
	if err := rows.Err(); err != nil {
		return model.WalletSummary{}, fmt.Errorf("iterate summary earnings: %w", err)
	}
	return summary, nil
}
