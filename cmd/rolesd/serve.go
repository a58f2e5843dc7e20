package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mineralchain/roles-admin/internal/api"
	"github.com/mineralchain/roles-admin/internal/api/handler"
	"github.com/mineralchain/roles-admin/internal/core/service"
	"github.com/mineralchain/roles-admin/internal/infrastructure/db/mongo"
	"github.com/mineralchain/roles-admin/internal/infrastructure/db/redis"
	"github.com/mineralchain/roles-admin/internal/infrastructure/queue"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveRun(cmd.Context())
		},
	}
}

func serveRun(parent context.Context) error {
	cfg, log, err := commonRun()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the API")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: programName})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	deps, err := dialChain(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	authRepo := mongo.NewAuthRepository(db)
	opsRepo := mongo.NewOperationRepository(db)
	mongo.EnsureIndexes(ctx, log, map[string]mongo.Indexer{
		"auth_users":      authRepo,
		"role_operations": opsRepo,
	})

	// --- Audit pipeline ---
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, opsRepo, log.With().Str("component", "audit").Logger())
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// --- Services ---
	board := service.NewRoleBoard()
	resolver := redis.NewNameCache(rdb, deps.resolver, cfg.Redis.NameCacheTTL, log)
	roles := service.NewRoleService(deps.registry, resolver, board, log.With().Str("component", "roles").Logger(), service.RoleServiceOptions{
		NameSuffix: cfg.Chain.NameSuffix,
		Lock:       redis.NewRoleLock(rdb, cfg.Chain.TxTimeout+time.Minute),
		Recorder:   dispatcher,
		Operations: opsRepo,
	})
	if _, err := roles.RefreshCounts(ctx); err != nil {
		log.Warn().Err(err).Msg("initial role count fetch failed")
	}
	auth := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour)

	readiness := handler.NewHealthDependenciesHandler().
		With("mongodb", handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) })).
		With("redis", handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })).
		With("chain", handler.ChainPinger(deps.client, cfg.Chain.ChainID))

	e := api.NewRouter(api.Deps{
		Logger:      log,
		JWTSecret:   cfg.JWTSecret,
		AuthService: auth,
		RoleService: roles,
		Readiness:   readiness,
	})

	// --- Run ---
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

