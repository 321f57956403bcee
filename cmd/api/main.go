// @title           User Admin API
// @version         1.0
// @description     Credential login and role-based administration of user accounts.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/api"
	"github.com/99minutos/user-admin/internal/api/handler"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/core/security"
	"github.com/99minutos/user-admin/internal/core/service"
	"github.com/99minutos/user-admin/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/user-admin/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/user-admin/internal/infrastructure/db/redis"
	"github.com/99minutos/user-admin/internal/infrastructure/queue"
	"github.com/99minutos/user-admin/internal/pkg/config"
	"github.com/99minutos/user-admin/pkg/logger"
)

const (
	serviceName     = "user-admin"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set; logins will fail with a server configuration error")
	}

	health := map[string]handler.Pinger{}

	// --- User store ---
	var repo ports.UserRepository
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory user store; data is lost on restart")
		repo = memory.NewUserRepository()
	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		mongoRepo := mongostore.NewUserRepository(db)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return err
		}
		repo = mongoRepo
		health["mongodb"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}

	// --- Audit sink ---
	var sink ports.AuditSink
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		sink = redisstore.NewAuditStream(rdb, cfg.Audit.Stream)
		health["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Info().Str("addr", cfg.Redis.Addr).Str("stream", cfg.Audit.Stream).Msg("audit events go to redis stream")
	} else {
		sink = queue.NewLogSink(log)
		log.Info().Msg("REDIS_ADDR not set; audit events go to the log")
	}

	// Workers outlive the signal context so queued events drain on shutdown.
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, sink, log)
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	// --- Core services ---
	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	tokens := security.NewTokenCodec(cfg.JWTSecret)
	authService := service.NewAuthService(repo, hasher, tokens, log)
	userService := service.NewUserService(repo, hasher, dispatcher, log)

	if err := userService.EnsureSuperAdmin(ctx, cfg.SuperAdmin.Email, cfg.SuperAdmin.Password, cfg.SuperAdmin.Username); err != nil {
		return err
	}

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		UserService: userService,
		Health:      health,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
