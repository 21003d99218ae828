package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	_ "expense_tracker/docs"
	"expense_tracker/internal/cache"
	"expense_tracker/internal/config"
	"expense_tracker/internal/events"
	"expense_tracker/internal/handlers"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/repository"
	"expense_tracker/internal/repository/db"
	"expense_tracker/internal/server"
	"expense_tracker/internal/service"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	connectTimeout  = 5 * time.Second
)

// @title                       Expense Tracker API
// @version                     1.0
// @description                 Personal income and expense tracking.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Configure(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open store", "driver", cfg.DB.Driver, "err", err)
	}
	defer closeStore()

	opts := service.Options{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
		Log:      log,
	}

	if cfg.Redis.Addr != "" {
		rdb, err := openRedis(ctx, cfg)
		if err != nil {
			log.Warnw("redis unavailable; running without cache and token revocation", "addr", cfg.Redis.Addr, "err", err)
		} else {
			defer func() { _ = rdb.Close() }()
			c := cache.NewRedis(rdb, cfg.Redis.CacheTTL)
			opts.Cache, opts.Revocations = c, c
		}
	}

	if cfg.AMQP.URL != "" {
		pub, err := events.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Warnw("amqp unavailable; expense events are not published", "err", err)
		} else {
			defer func() { _ = pub.Close() }()
			opts.Publisher = pub
		}
	}

	// wire dependencies
	services := service.NewService(repos, opts)
	apiHandler := handlers.NewHandler(services, log, cfg.CORSOrigins)
	srv := &server.Server{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("starting server", "port", cfg.Port, "driver", cfg.DB.Driver)
		return srv.Run(cfg.Port, server.WithCORS(apiHandler.InitRoutes(), cfg.CORSOrigins))
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")

		// allow in-flight requests to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("server stopped with error", "err", err)
		return
	}
	log.Infow("server stopped")
}

// openStore connects the configured account store and returns a close func for it.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Repository, func(), error) {
	switch cfg.DB.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DB.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}

		repos, err := repository.NewMongoRepository(ctx, client.Database(cfg.DB.MongoDB))
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		return repos, disconnect, nil

	default:
		sqlDB, err := db.InitDB(cfg.DB.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite: %w", err)
		}
		repos, err := repository.NewSQLiteRepository(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return repos, func() { _ = sqlDB.Close() }, nil
	}
}

func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
