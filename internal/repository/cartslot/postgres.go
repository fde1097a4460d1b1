package cartslot

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Load(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT payload::text
FROM cart_slots
WHERE key = $1
`
	var payload string
	if err := r.pool.QueryRow(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return []byte(payload), nil
}

func (r *postgresRepo) Save(ctx context.Context, key string, payload []byte) error {
	const q = `
INSERT INTO cart_slots (key, payload, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at
`
	_, err := r.pool.Exec(ctx, q, key, string(payload))
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_slots WHERE key = $1`, key)
	return err
}
