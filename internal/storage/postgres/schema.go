package postgres

// Schema is the full DDL for the ledger store, applied by `ledgerd migrate`.
// The unique key on (signature, event_ordinal) is what makes replayed
// webhook deliveries safe; idempotency lives in the store, not in
// application-level locking.
const Schema = `
CREATE TABLE IF NOT EXISTS reward_transactions (
	id               BIGSERIAL PRIMARY KEY,
	signature        TEXT NOT NULL,
	event_ordinal    INTEGER NOT NULL,
	block_time       TIMESTAMPTZ NOT NULL,
	slot             BIGINT NOT NULL,
	transaction_type TEXT NOT NULL,
	pool_type        TEXT,
	pool_id          TEXT,
	amount           BIGINT NOT NULL,
	creator_share    BIGINT,
	platform_share   BIGINT,
	ecosystem_share  BIGINT,
	holder_share     BIGINT,
	source_wallet    TEXT NOT NULL,
	creator_wallet   TEXT,
	receiver_wallet  TEXT,
	content_pubkey   TEXT,
	nft_asset        TEXT,
	nft_weight       BIGINT,
	debt_before      BIGINT,
	debt_after       BIGINT,
	event_data       JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT reward_transactions_identity UNIQUE (signature, event_ordinal)
);

CREATE INDEX IF NOT EXISTS idx_reward_tx_source_wallet ON reward_transactions (source_wallet, block_time);
CREATE INDEX IF NOT EXISTS idx_reward_tx_receiver_wallet ON reward_transactions (receiver_wallet, block_time);
CREATE INDEX IF NOT EXISTS idx_reward_tx_creator_wallet ON reward_transactions (creator_wallet, block_time);
CREATE INDEX IF NOT EXISTS idx_reward_tx_block_time ON reward_transactions (block_time);

CREATE TABLE IF NOT EXISTS subscriptions (
	stream_id         TEXT PRIMARY KEY,
	subscriber        TEXT NOT NULL,
	creator_wallet    TEXT NOT NULL,
	kind              TEXT NOT NULL,
	amount_per_period BIGINT NOT NULL,
	is_active         BOOLEAN NOT NULL DEFAULT true,
	started_at        TIMESTAMPTZ NOT NULL,
	cancelled_at      TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_subscriber ON subscriptions (subscriber);
CREATE INDEX IF NOT EXISTS idx_subscriptions_creator ON subscriptions (creator_wallet);
`
