package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository manages device tokens for push notifications, persisted so
// registrations survive restarts.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// RegisterToken adds or refreshes a device token.
func (r *TokenRepository) RegisterToken(token string) error {
	_, err := r.pool.Exec(context.Background(), `
		insert into device_tokens(token) values ($1)
		on conflict (token) do update set registered_at = now()
	`, token)
	return err
}

// UnregisterToken removes a device token.
func (r *TokenRepository) UnregisterToken(token string) error {
	_, err := r.pool.Exec(context.Background(), `delete from device_tokens where token = $1`, token)
	return err
}

// GetAllTokens returns all registered tokens.
func (r *TokenRepository) GetAllTokens() []string {
	rows, err := r.pool.Query(context.Background(), `select token from device_tokens`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
