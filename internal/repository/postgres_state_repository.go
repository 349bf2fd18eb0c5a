package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradebot-backend/internal/domain"
)

// PostgresStateRepository stores one bot_state row per bot ID plus the
// archived per-day profit history.
type PostgresStateRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStateRepository(pool *pgxpool.Pool) *PostgresStateRepository {
	return &PostgresStateRepository{pool: pool}
}

// Load reads the persisted position and daily stats. If the persisted day
// start falls on an earlier calendar day than now, the old day's profit is
// archived, counters are reset and the reset state is persisted before
// returning. Restarting the process any number of times after midnight still
// rolls the day over exactly once.
func (r *PostgresStateRepository) Load(botID string, now time.Time) (domain.Position, domain.DailyStats, error) {
	row := r.pool.QueryRow(context.Background(), `
		select holding, amount, base_asset, quote_asset, entry_price, highest_price,
			trade_count, daily_profit, day_start
		from bot_state
		where bot_id = $1
	`, botID)

	var pos domain.Position
	var stats domain.DailyStats
	err := row.Scan(
		&pos.Holding,
		&pos.Amount,
		&pos.BaseAsset,
		&pos.QuoteAsset,
		&pos.EntryPrice,
		&pos.HighestPrice,
		&stats.TradeCount,
		&stats.Profit,
		&stats.StartTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Position{}, domain.DailyStats{}, domain.ErrStateNotFound
	}
	if err != nil {
		return domain.Position{}, domain.DailyStats{}, err
	}

	if !domain.SameDay(stats.StartTime, now) {
		if err := r.ArchiveDay(botID, stats.StartTime, stats.Profit); err != nil {
			return pos, stats, err
		}
		log.Printf("day rollover: archived %s profit=%.4f", stats.StartTime.Format("2006-01-02"), stats.Profit)

		stats = domain.NewDailyStats(now)
		if err := r.Save(botID, pos, stats); err != nil {
			return pos, stats, err
		}
	}

	return pos, stats, nil
}

func (r *PostgresStateRepository) Save(botID string, pos domain.Position, stats domain.DailyStats) error {
	_, err := r.pool.Exec(context.Background(), `
		insert into bot_state(
			bot_id, holding, amount, base_asset, quote_asset, entry_price, highest_price,
			trade_count, daily_profit, day_start, updated_at
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
		on conflict (bot_id) do update set
			holding=$2,
			amount=$3,
			base_asset=$4,
			quote_asset=$5,
			entry_price=$6,
			highest_price=$7,
			trade_count=$8,
			daily_profit=$9,
			day_start=$10,
			updated_at=now()
	`,
		botID,
		pos.Holding,
		pos.Amount,
		pos.BaseAsset,
		pos.QuoteAsset,
		pos.EntryPrice,
		pos.HighestPrice,
		stats.TradeCount,
		stats.Profit,
		stats.StartTime,
	)
	return err
}

func (r *PostgresStateRepository) ArchiveDay(botID string, day time.Time, profit float64) error {
	// Upsert keeps a retried rollover from failing on the primary key.
	_, err := r.pool.Exec(context.Background(), `
		insert into daily_profit_history(bot_id, day, profit)
		values ($1, $2, $3)
		on conflict (bot_id, day) do update set profit=$3
	`, botID, day, profit)
	return err
}

func (r *PostgresStateRepository) DailyHistory(botID string) ([]domain.DailyProfit, error) {
	rows, err := r.pool.Query(context.Background(), `
		select day, profit
		from daily_profit_history
		where bot_id = $1
		order by day desc
	`, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.DailyProfit, 0)
	for rows.Next() {
		var dp domain.DailyProfit
		if err := rows.Scan(&dp.Day, &dp.Profit); err != nil {
			continue
		}
		history = append(history, dp)
	}
	return history, rows.Err()
}

// compile-time check
var _ domain.BotStateRepository = (*PostgresStateRepository)(nil)
