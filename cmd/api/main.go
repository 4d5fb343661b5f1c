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

	_ "github.com/redmonkez12/whisper-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/whisper-api/internal/account"
	"github.com/redmonkez12/whisper-api/internal/auth"
	"github.com/redmonkez12/whisper-api/internal/config"
	"github.com/redmonkez12/whisper-api/internal/database"
	"github.com/redmonkez12/whisper-api/internal/email"
	httpServer "github.com/redmonkez12/whisper-api/internal/http"
	"github.com/redmonkez12/whisper-api/internal/logging"
	"github.com/redmonkez12/whisper-api/internal/message"
)

// @title           Whisper API
// @version         1.0
// @description     Anonymous messaging service with account verification and session authorization.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	sqlDB, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer sqlDB.Close()

	// Run schema migrations before taking traffic
	if err := database.RunMigrations(context.Background(), sqlDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := database.NewBunDB(sqlDB)

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	accountRepo := account.NewRepository(db)
	messageRepo := message.NewRepository(db)
	usernameCache := account.NewUsernameCache(redisClient)

	// Initialize token service
	tokenService, err := initTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	// Initialize services
	authService := auth.NewService(accountRepo, usernameCache, emailService, logger)
	messageService := message.NewService(accountRepo, messageRepo, logger)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		tokenService,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.SessionDuration,
	)
	messageHandler := message.NewHandler(messageService)
	authMiddleware := auth.NewMiddleware(tokenService)
	pageGuard := auth.PageGuard(tokenService)

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, messageHandler, authMiddleware, pageGuard, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection
func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return sqlDB, nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initTokenService picks the configured session token backend
func initTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenBackend {
	case config.TokenBackendJWT:
		return auth.NewJWTService(cfg.SessionKey)
	default:
		return auth.NewPasetoService(cfg.SessionKey)
	}
}
