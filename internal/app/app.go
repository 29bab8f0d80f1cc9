package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"habit-tracker/internal/config"
	cronpkg "habit-tracker/internal/infrastructure/cron"
	infradb "habit-tracker/internal/infrastructure/db"
	"habit-tracker/internal/infrastructure/kafka"
	"habit-tracker/internal/infrastructure/postgres"
	redisinfra "habit-tracker/internal/infrastructure/redis"
	"habit-tracker/internal/infrastructure/smtp"
	"habit-tracker/internal/infrastructure/telegram"
	"habit-tracker/internal/service"
	"habit-tracker/internal/transport/http/handler"
	"habit-tracker/internal/transport/http/middleware"
	"habit-tracker/pkg/hash"
	pkgjwt "habit-tracker/pkg/jwt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App represents the application
type App struct {
	config        *config.Config
	httpServer    *http.Server
	dispatcher    *cronpkg.ReminderDispatcher
	rateLimiter   *middleware.RateLimiter
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	kafkaProducer *kafka.Producer
}

// New creates a new application
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log.Println("Configuration loaded successfully")

	ctx := context.Background()
	dbPool, err := infradb.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Println("Connected to PostgreSQL")

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("Connected to Redis")

	// Repositories
	habitRepo := postgres.NewHabitRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	sessionStorage := redisinfra.NewSessionStorage(redisClient, cfg.Redis.SessionTTL)

	// Optional collaborators
	var events service.EventPublisher
	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(&cfg.Kafka)
		events = kafkaProducer
		log.Println("Kafka producer initialized")
	}

	var mailer service.Mailer
	if cfg.SMTP.Enabled {
		smtpClient, err := smtp.NewClient(&cfg.SMTP)
		if err != nil {
			redisClient.Close()
			dbPool.Close()
			return nil, fmt.Errorf("failed to initialize SMTP client: %w", err)
		}
		mailer = smtpClient
		log.Println("SMTP client initialized")
	}

	// Services
	tokenManager := pkgjwt.NewTokenManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
	)

	hasher := hash.NewHasher(cfg.Security.PasswordHashCost)
	userService := service.NewUserService(userRepo, hasher)
	authService := service.NewAuthService(userService, sessionStorage, tokenManager, cfg.Redis.SessionTTL, events, mailer)
	habitService := service.NewHabitService(habitRepo)

	telegramClient := telegram.NewClient(&cfg.Telegram)
	reminderService := service.NewReminderService(habitRepo, userRepo, telegramClient, events)
	log.Println("Services initialized")

	// Reminder dispatcher (if enabled)
	var dispatcher *cronpkg.ReminderDispatcher
	if cfg.Scheduler.Enabled {
		dispatcher = cronpkg.NewReminderDispatcher(reminderService, cfg.Scheduler.CheckInterval)
		log.Println("Reminder dispatcher initialized")
	} else {
		log.Println("Reminder dispatcher is disabled in configuration")
	}

	// HTTP transport
	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RequestsPerMinute)

	userHandler := handler.NewUserHandler(authService, userService)
	habitHandler := handler.NewHabitHandler(habitService)
	router := handler.NewRouter(userHandler, habitHandler, authMiddleware, rateLimiter)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	return &App{
		config:        cfg,
		httpServer:    httpServer,
		dispatcher:    dispatcher,
		rateLimiter:   rateLimiter,
		dbPool:        dbPool,
		redisClient:   redisClient,
		kafkaProducer: kafkaProducer,
	}, nil
}

// Run starts the application
func (a *App) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	stopCleanup := make(chan struct{})
	a.rateLimiter.StartCleanup(stopCleanup)

	if a.dispatcher != nil {
		if err := a.dispatcher.Start(); err != nil {
			return fmt.Errorf("failed to start reminder dispatcher: %w", err)
		}
	}

	go func() {
		log.Printf("Starting HTTP server on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			quit <- syscall.SIGTERM
		}
	}()

	log.Printf("%s started on port %d", a.config.Service.Name, a.config.HTTP.Port)

	<-quit
	log.Println("Shutting down server...")
	close(stopCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if a.dispatcher != nil {
		a.dispatcher.Stop()
	}

	if a.kafkaProducer != nil {
		if err := a.kafkaProducer.Close(); err != nil {
			log.Printf("Failed to close Kafka producer: %v", err)
		}
	}

	if err := a.redisClient.Close(); err != nil {
		log.Printf("Failed to close Redis client: %v", err)
	}

	a.dbPool.Close()

	log.Println("Server shutdown complete")
	return nil
}
