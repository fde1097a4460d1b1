package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/uuid"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/repository/cartslot"
	"storefront/internal/seed"
	cartsvc "storefront/internal/service/cart"
)

func main() {
	var sessionID string
	flag.StringVar(&sessionID, "session", "", "Cart session id to seed (a new one is generated when empty)")
	flag.Parse()
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout).With().Str("cmd", "seed").Logger()

	ctx := context.Background()
	var slot cartslot.Repository
	switch cfg.Cart.Store {
	case "redis":
		client, err := db.ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect redis")
		}
		defer client.Close()
		slot = cartslot.NewRedis(client, cfg.Cart.SlotTTL)
	case "postgres":
		pool, err := db.ConnectPostgres(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect db")
		}
		defer pool.Close()
		slot = cartslot.NewPostgres(pool)
	default:
		logger.Fatal().Str("store", cfg.Cart.Store).Msg("seeding needs a persistent CART_STORE")
	}

	sessions := cartsvc.NewSessions(slot, cfg.Cart.SlotPrefix, 0, logger)
	c, err := seed.Apply(ctx, sessions, sessionID)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}

	logger.Info().
		Str("session", sessionID).
		Int("items", c.ItemCount()).
		Str("total", c.TotalPrice.String()).
		Msg("seed applied")
}
