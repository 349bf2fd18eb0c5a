package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradebot-backend/internal/domain"
)

// PostgresTradeRepository is the append-only trade log. order_id is the
// primary key, so a retried submission can never create a second row.
type PostgresTradeRepository struct {
	pool  *pgxpool.Pool
	botID string
}

func NewPostgresTradeRepository(pool *pgxpool.Pool, botID string) *PostgresTradeRepository {
	return &PostgresTradeRepository{pool: pool, botID: botID}
}

func (r *PostgresTradeRepository) RecordTrade(trade *domain.Trade) error {
	if trade == nil {
		return errors.New("nil trade")
	}

	_, err := r.pool.Exec(context.Background(), `
		insert into trades(order_id, bot_id, symbol, side, quantity, avg_price, quote_amount, profit, reason, executed_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		trade.OrderID,
		r.botID,
		trade.Symbol,
		trade.Side,
		trade.Quantity,
		trade.AvgPrice,
		trade.QuoteAmount,
		trade.Profit,
		trade.Reason,
		trade.ExecutedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateTrade
		}
		return err
	}
	return nil
}

func (r *PostgresTradeRepository) GetTrades(from time.Time) ([]*domain.Trade, error) {
	rows, err := r.pool.Query(context.Background(), `
		select order_id, symbol, side, quantity, avg_price, quote_amount, profit, reason, executed_at
		from trades
		where bot_id = $1 and executed_at >= $2
		order by executed_at desc
	`, r.botID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(
			&t.OrderID,
			&t.Symbol,
			&t.Side,
			&t.Quantity,
			&t.AvgPrice,
			&t.QuoteAmount,
			&t.Profit,
			&t.Reason,
			&t.ExecutedAt,
		); err != nil {
			continue
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}

// compile-time check
var _ domain.TradeRepository = (*PostgresTradeRepository)(nil)
