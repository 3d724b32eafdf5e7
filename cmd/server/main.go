package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	_ "github.com/credgate/auth-api/docs" // swagger docs

	"github.com/credgate/auth-api/internal/api"
	"github.com/credgate/auth-api/internal/api/handler"
	"github.com/credgate/auth-api/internal/api/metrics"
	"github.com/credgate/auth-api/internal/core/ports"
	"github.com/credgate/auth-api/internal/core/service"
	"github.com/credgate/auth-api/internal/infrastructure/db/mongo"
	"github.com/credgate/auth-api/internal/infrastructure/db/redis"
	"github.com/credgate/auth-api/internal/infrastructure/security"
	"github.com/credgate/auth-api/internal/pkg/config"
	"github.com/credgate/auth-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Auth API
// @version 1.0
// @description Registration, login and a bearer-token protected profile endpoint.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.ServiceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Username: cfg.Mongo.Username,
		Password: cfg.Mongo.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	checks := []handler.DependencyCheck{
		{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
	}

	// The profile cache is optional; without Redis every lookup goes to Mongo.
	var (
		cache       ports.ProfileCache
		redisClient *goredis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, profile cache disabled")
		} else {
			cache = redis.NewProfileCache(redisClient, cfg.Redis.ProfileTTL, metrics.ProfileCacheLookupsTotal, log)
			checks = append(checks, handler.DependencyCheck{
				Name: "redis",
				Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			})
			log.Info().Str("addr", cfg.Redis.Addr).Msg("profile cache enabled")
		}
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost, metrics.PasswordHashDuration)
	tokens := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	e := api.NewRouter(api.Dependencies{
		AuthService:  service.NewAuthService(users, hasher, tokens, log),
		UserService:  service.NewUserService(users, cache),
		Tokens:       tokens,
		HealthChecks: checks,
		Log:          log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Int("bcrypt_cost", hasher.Cost()).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}
	log.Info().Msg("server stopped")
}
