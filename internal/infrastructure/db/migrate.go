package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the minimal tables needed by this app.
// This keeps setup simple (no external migration tool), but still gives persistence.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists bot_state (
			bot_id text primary key,
			holding boolean not null default false,
			amount double precision not null default 0,
			base_asset text not null default '',
			quote_asset text not null default '',
			entry_price double precision not null default 0,
			highest_price double precision not null default 0,
			trade_count int not null default 0,
			daily_profit double precision not null default 0,
			day_start timestamptz not null,
			updated_at timestamptz not null default now()
		);`,
		`create table if not exists daily_profit_history (
			bot_id text not null,
			day date not null,
			profit double precision not null default 0,
			primary key (bot_id, day)
		);`,
		`create table if not exists trades (
			order_id bigint primary key,
			bot_id text not null,
			symbol text not null,
			side text not null,
			quantity double precision not null,
			avg_price double precision not null,
			quote_amount double precision not null,
			profit double precision not null default 0,
			reason text not null,
			executed_at timestamptz not null
		);`,
		`create index if not exists trades_bot_executed_idx on trades(bot_id, executed_at desc);`,
		`create table if not exists device_tokens (
			token text primary key,
			registered_at timestamptz not null default now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
