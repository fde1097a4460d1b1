package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront/internal/cms"
	"storefront/internal/commerce"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/repository/cartslot"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	contentsvc "storefront/internal/service/content"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout).With().Str("cmd", "api").Logger()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var ready []httpserver.ReadinessCheck

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		client, err := db.ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to redis")
		}
		defer client.Close()
		rdb = client
		ready = append(ready, httpserver.ReadinessCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}

	var slot cartslot.Repository
	switch cfg.Cart.Store {
	case "memory":
		slot = cartslot.NewMemory()
	case "redis":
		if rdb == nil {
			logger.Fatal().Msg("CART_STORE=redis requires REDIS_ADDR")
		}
		slot = cartslot.NewRedis(rdb, cfg.Cart.SlotTTL)
	case "postgres":
		pool, err := db.ConnectPostgres(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to db")
		}
		defer pool.Close()
		slot = cartslot.NewPostgres(pool)
		ready = append(ready, httpserver.ReadinessCheck{Name: "postgres", Ping: pool.Ping})
	default:
		logger.Fatal().Str("store", cfg.Cart.Store).Msg("unknown CART_STORE")
	}

	commerceClient := commerce.New(cfg.Commerce, logger)
	sessions := cartsvc.NewSessions(slot, cfg.Cart.SlotPrefix, cfg.Cart.SessionIdle, logger)
	go sessions.Run(ctx)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Catalog:        catalogsvc.New(commerceClient, logger),
		Content:        newContentService(cfg, rdb, logger),
		Carts:          cartsvc.NewService(sessions, commerceClient, cfg.Cart.Country, logger),
		AllowedOrigins: cfg.AllowedOrigins,
		SessionCookie:  cfg.Cart.SlotPrefix,
		Ready:          ready,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("cart_store", cfg.Cart.Store).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}

// newContentService wires whichever CMS clients are configured. A nil
// *cms.Client must not reach the service as a non-nil interface.
func newContentService(cfg config.Config, rdb *redis.Client, logger zerolog.Logger) *contentsvc.Service {
	var delivery, preview contentsvc.EntrySource
	if c := cms.NewDelivery(cfg.CMS, logger); c != nil {
		delivery = c
	}
	if c := cms.NewPreview(cfg.CMS, logger); c != nil {
		preview = c
	}
	var cache contentsvc.Cache
	if rdb != nil && cfg.CMS.CacheTTL > 0 {
		cache = contentsvc.NewRedisCache(rdb, cfg.CMS.CacheTTL)
	}
	return contentsvc.New(delivery, preview, cache, logger)
}
