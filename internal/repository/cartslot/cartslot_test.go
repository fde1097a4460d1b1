package cartslot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

// exerciseRepository runs the contract every implementation must satisfy.
func exerciseRepository(t *testing.T, repo Repository, key string) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Load(ctx, key)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Save(ctx, key, []byte(`{"id":"local-1","version":1}`)))
	got, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"local-1","version":1}`, string(got))

	require.NoError(t, repo.Save(ctx, key, []byte(`{"id":"local-1","version":2}`)))
	got, err = repo.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"local-1","version":2}`, string(got))

	require.NoError(t, repo.Clear(ctx, key))
	_, err = repo.Load(ctx, key)
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, repo.Clear(ctx, key), "clearing an absent key")
}

func TestMemory(t *testing.T) {
	exerciseRepository(t, NewMemory(), "bt-cart:s1")
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, "k", []byte("abc")))

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseRepository(t, NewRedis(client, time.Hour), "bt-cart:s1")
}

func TestRedis_SaveRefreshesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRedis(client, time.Hour)
	require.NoError(t, repo.Save(context.Background(), "bt-cart:s1", []byte(`{}`)))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, repo.Save(context.Background(), "bt-cart:s1", []byte(`{}`)))

	assert.Equal(t, time.Hour, mr.TTL("bt-cart:s1"))
}

func TestRedis_LoadRefreshesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRedis(client, time.Hour)
	require.NoError(t, repo.Save(context.Background(), "bt-cart:s1", []byte(`{}`)))
	mr.FastForward(45 * time.Minute)
	_, err := repo.Load(context.Background(), "bt-cart:s1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("bt-cart:s1"))

	mr.FastForward(45 * time.Minute)
	data, err := repo.Load(context.Background(), "bt-cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestRedis_ExpiredSlotIsAbsent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRedis(client, time.Minute)
	require.NoError(t, repo.Save(context.Background(), "bt-cart:s1", []byte(`{}`)))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Load(context.Background(), "bt-cart:s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedis_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err := NewRedis(client, 0).Load(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool, zerolog.Nop()))
	_, err = pool.Exec(ctx, `TRUNCATE cart_slots`)
	require.NoError(t, err)

	exerciseRepository(t, NewPostgres(pool), "bt-cart:s1")
}
