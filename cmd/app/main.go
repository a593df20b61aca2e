package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/basfactory/stock-analyzer/internal/favorites"
	"github.com/basfactory/stock-analyzer/internal/handler/api"
	"github.com/basfactory/stock-analyzer/internal/marketdata"
	"github.com/basfactory/stock-analyzer/internal/news"
	"github.com/basfactory/stock-analyzer/pkg/cache"
	"github.com/basfactory/stock-analyzer/pkg/config"
	xhttp "github.com/basfactory/stock-analyzer/pkg/http"
	xlogger "github.com/basfactory/stock-analyzer/pkg/logger"
	"github.com/basfactory/stock-analyzer/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	logger.Info("starting",
		xlogger.String("env", cfg.Environment),
		xlogger.Int("port", cfg.Server.Port))

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer db.Close()

	rec := metrics.New()

	market := marketdata.NewCache(
		marketdata.NewYahooClient(cfg.MarketData.BaseURL, cfg.MarketData.Timeout, rec),
		cfg.MarketData.Cache.MaxEntries,
		logger,
		rec,
	)

	favs := favorites.NewService(favorites.NewPostgresStore(db), logger)

	aggOpts := []news.AggregatorOption{news.WithTTL(cfg.News.CacheTTL)}
	if cfg.Redis.Addr != "" {
		shared, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			// redis is an optional layer; run memory-only when unreachable
			logger.Warn("redis unavailable, using memory cache only", xlogger.Error(err))
		} else {
			defer shared.Close()
			aggOpts = append(aggOpts, news.WithSharedCache(shared))
		}
	}
	aggregator := news.NewAggregator(
		news.NewAPIClient(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.Timeout, logger, rec),
		news.NewQueryBuilder(cfg.News.SymbolNames, cfg.News.MarketCodes),
		logger,
		rec,
		aggOpts...,
	)

	handler := api.NewDashboardHandler(logger, market, favs, aggregator)
	server := xhttp.NewServer(handler,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
	)
	if err := server.Start(); err != nil {
		log.Fatalf("server start failed: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", xlogger.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("shutdown error", xlogger.Error(err))
		os.Exit(1)
	}
}

// openDatabase opens the Postgres pool and creates the favorites schema.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := favorites.NewPostgresStore(db).EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
