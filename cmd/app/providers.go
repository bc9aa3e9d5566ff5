package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/forecast"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
	"github.com/yanqian/merchant-insights/internal/domain/notes"
	"github.com/yanqian/merchant-insights/internal/infra/competitorrepo"
	"github.com/yanqian/merchant-insights/internal/infra/config"
	"github.com/yanqian/merchant-insights/internal/infra/forecastrepo"
	"github.com/yanqian/merchant-insights/internal/infra/noterepo"
	"github.com/yanqian/merchant-insights/internal/infra/salesrepo"
	"github.com/yanqian/merchant-insights/internal/infra/shoprepo"
	"github.com/yanqian/merchant-insights/internal/infra/statsstore"
)

type salesStore interface {
	forecast.SeriesRepository
	insight.SalesRepository
	auth.ShopDataPurger
}

type forecastStore interface {
	forecast.Repository
	auth.ShopDataPurger
}

type competitorStore interface {
	insight.CompetitorRepository
	auth.ShopDataPurger
}

type noteStore interface {
	notes.Repository
	auth.ShopDataPurger
}

type statsCache interface {
	insight.StatsStore
	auth.ShopDataPurger
}

func provideForecastConfig(cfg *config.Config) forecast.Config {
	return forecast.Config{
		DefaultHorizonDays: cfg.Forecast.DefaultHorizonDays,
		MaxHorizonDays:     cfg.Forecast.MaxHorizonDays,
		MaxLag:             cfg.Forecast.MaxLag,
	}
}

func provideInsightConfig(cfg *config.Config) insight.Config {
	return insight.Config{StatsTTL: cfg.Insight.StatsTTL}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		APIKey:             cfg.Shopify.APIKey,
		APISecret:          cfg.Shopify.APISecret,
		Scopes:             cfg.Shopify.Scopes,
		AppURL:             cfg.Shopify.AppURL,
		TokenEncryptionKey: cfg.Shopify.TokenEncryptionKey,
		DevShopID:          cfg.Shopify.DevShopID,
		SessionLeeway:      cfg.Shopify.SessionLeeway,
	}
}

// providePostgresPool returns a nil pool when no DSN is configured or the database
// is unreachable; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil, noop
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

// provideValkeyClient returns nil when valkey is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if !cfg.Valkey.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey stats store enabled", "addr", cfg.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideSalesStore(pool *pgxpool.Pool) salesStore {
	if pool == nil {
		return salesrepo.NewMemoryRepository()
	}
	return salesrepo.NewPostgresRepository(pool)
}

func provideForecastStore(pool *pgxpool.Pool) forecastStore {
	if pool == nil {
		return forecastrepo.NewMemoryRepository()
	}
	return forecastrepo.NewPostgresRepository(pool)
}

func provideCompetitorStore(pool *pgxpool.Pool) competitorStore {
	if pool == nil {
		return competitorrepo.NewMemoryRepository()
	}
	return competitorrepo.NewPostgresRepository(pool)
}

func provideNoteStore(pool *pgxpool.Pool) noteStore {
	if pool == nil {
		return noterepo.NewMemoryRepository()
	}
	return noterepo.NewPostgresRepository(pool)
}

func provideShopRepository(pool *pgxpool.Pool) auth.ShopRepository {
	if pool == nil {
		return shoprepo.NewMemoryRepository()
	}
	return shoprepo.NewPostgresRepository(pool)
}

func provideStatsCache(cfg *config.Config, client valkey.Client) statsCache {
	if client == nil {
		return statsstore.NewMemoryStore()
	}
	return statsstore.NewValkeyStore(client, cfg.Valkey.Prefix)
}

func provideSeriesRepository(store salesStore) forecast.SeriesRepository { return store }

func provideSalesRepository(store salesStore) insight.SalesRepository { return store }

func provideForecastRepository(store forecastStore) forecast.Repository { return store }

func provideCompetitorRepository(store competitorStore) insight.CompetitorRepository { return store }

func provideNoteRepository(store noteStore) notes.Repository { return store }

func provideStatsStore(store statsCache) insight.StatsStore { return store }

// providePurgers lists every shop-scoped store that a shop/redact webhook must clear.
func providePurgers(forecasts forecastStore, sales salesStore, competitors competitorStore, productNotes noteStore, stats statsCache) auth.Purgers {
	return auth.Purgers{forecasts, sales, competitors, productNotes, stats}
}
