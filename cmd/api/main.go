package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/google/uuid"

	_ "github.com/gymtrack/gymtrack-api/docs" // Swagger docs (generated)
	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/database"
	httpServer "github.com/gymtrack/gymtrack-api/internal/http"
	"github.com/gymtrack/gymtrack-api/internal/logging"
	"github.com/gymtrack/gymtrack-api/internal/password"
	"github.com/gymtrack/gymtrack-api/internal/provider"
	"github.com/gymtrack/gymtrack-api/internal/ratelimit"
	"github.com/gymtrack/gymtrack-api/internal/token"
	"github.com/gymtrack/gymtrack-api/internal/trainee"
	"github.com/gymtrack/gymtrack-api/internal/trainer"
	"github.com/gymtrack/gymtrack-api/internal/user"
)

// @title           GymTrack API
// @version         1.0
// @description     Gym management backend: registration, authentication, and role-gated trainer/trainee surfaces.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_backend", cfg.Auth.TokenBackend,
		"auth_provider", cfg.Provider.Kind,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories
	userRepo := user.NewRepository(db)
	traineeRepo := trainee.NewRepository(db)
	trainerRepo := trainer.NewRepository(db)
	refreshTokenRepo := auth.NewRedisRepository(redisClient)

	rateLimiter := ratelimit.NewLimiter(redisClient)

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	credentialProvider := newCredentialProvider(cfg.Provider)

	// The role-scoped profile attached to login responses.
	profileResolver := func(ctx context.Context, role user.Role, userID uuid.UUID) (any, error) {
		switch role {
		case user.RoleTrainer:
			return trainerRepo.GetByUserID(ctx, userID)
		case user.RoleTrainee:
			return traineeRepo.GetByUserID(ctx, userID)
		default:
			return nil, nil
		}
	}

	authService := auth.NewService(
		userRepo,
		refreshTokenRepo,
		credentialProvider,
		tokenService,
		profileResolver,
		logger,
		cfg.Auth.AdminCode,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)

	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	authMiddleware := auth.NewMiddleware(tokenService, userRepo)
	traineeHandler := trainee.NewHandler(traineeRepo)
	trainerHandler := trainer.NewHandler(trainerRepo, traineeRepo)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, traineeHandler, trainerHandler, userRepo, logger)

	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the database, verifies the connection, applies pending
// migrations, and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := database.Migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// newTokenService selects the token backend from config.
func newTokenService(cfg config.AuthConfig) (token.Service, error) {
	switch cfg.TokenBackend {
	case "paseto":
		return token.NewPasetoService(cfg.TokenSecret)
	default:
		return token.NewJWTService(cfg.TokenSecret)
	}
}

// newCredentialProvider selects credential custody from config.
func newCredentialProvider(cfg config.ProviderConfig) provider.Provider {
	switch cfg.Kind {
	case "firebase":
		return provider.NewFirebaseProvider(cfg.FirebaseAPIKey)
	default:
		return provider.NewLocalProvider(password.NewHasher())
	}
}
