package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	jwttoken "kycore/internal/jwt_token"
	"kycore/internal/platform/config"
	"kycore/internal/platform/httpserver"
	"kycore/internal/platform/kafka"
	"kycore/internal/platform/logger"
	"kycore/internal/platform/metrics"
	"kycore/internal/platform/postgres"
	"kycore/internal/platform/redis"
	"kycore/internal/ratelimit"
	httptransport "kycore/internal/transport/http"
	userhandler "kycore/internal/user/handler"
	userservice "kycore/internal/user/service"
	userstore "kycore/internal/user/store"
	"kycore/pkg/cache"
	"kycore/pkg/domain"
	"kycore/pkg/platform/events"
	"kycore/pkg/repository"
)

// serve wires the dependencies and runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config) error {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()
	domain.SetEnvironment(cfg.Env)

	db, err := postgres.Open(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer func() { _ = postgres.Close(db) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	repoMetrics := metrics.NewRepository(reg)
	userMetrics := metrics.NewUsers(reg)

	dispatcher := events.NewDispatcher()
	userservice.RegisterEventHandlers(dispatcher, log)
	kafkaClient, err := kafka.NewClient(cfg.Kafka)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		dispatcher.RegisterAll(kafka.NewEventSink(kafkaClient, cfg.Kafka.Topic))
	}

	users := userstore.New(db,
		repository.WithEmitter(dispatcher),
		repository.WithLogger(log),
		repository.WithMetrics(repoMetrics),
		repository.WithTransactionTimeout(cfg.Server.TransactionTimeout.Std()),
	)
	health := map[string]httptransport.HealthCheck{
		"postgres": func(ctx context.Context) error { return postgres.Health(ctx, db) },
	}
	var middleware []func(http.Handler) http.Handler
	opts := []userservice.Option{userservice.WithMetrics(userMetrics), userservice.WithLogger(log)}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		c := cache.New(rdb, cache.WithPrefix(cfg.Cache.Prefix), cache.WithLogger(log))
		opts = append(opts, userservice.WithCache(userstore.NewCache(c, cfg.Cache.UserTTL.Std(), userMetrics)))
		health["redis"] = rdb.Health
		limiter := ratelimit.New(c, cfg.RateLimit.Requests, cfg.RateLimit.Window.Std(), log)
		middleware = append(middleware, limiter.Middleware)
	}

	tokens := jwttoken.New(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		JWT:        tokens.Validator(),
		Gatherer:   reg,
		Health:     health,
		Middleware: middleware,
		Routes: []httptransport.Routes{
			userhandler.New(userservice.New(users, opts...), log),
		},
	})

	log.Log(ctx, "starting kycore", "addr", cfg.Server.Addr, "env", cfg.Env)
	if err := httpserver.Run(ctx, httpserver.New(cfg.Server.Addr, router), cfg.Server.ShutdownTimeout.Std()); err != nil {
		log.Error(ctx, err, "server stopped")
		return err
	}
	log.Log(ctx, "kycore stopped")
	return nil
}

// migrate creates or updates every table the service owns.
func migrate(ctx context.Context, cfg config.Config) error {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	db, err := postgres.Open(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer func() { _ = postgres.Close(db) }()

	if err := postgres.Migrate(ctx, db, userstore.Models()...); err != nil {
		return err
	}
	log.Log(ctx, "schema migrated")
	return nil
}
