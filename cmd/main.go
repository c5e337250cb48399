package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/users-service/internal/events"
	"github.com/sbilibin2017/users-service/internal/handlers"
	"github.com/sbilibin2017/users-service/internal/jwt"
	"github.com/sbilibin2017/users-service/internal/logger"
	"github.com/sbilibin2017/users-service/internal/middlewares"
	"github.com/sbilibin2017/users-service/internal/password"
	"github.com/sbilibin2017/users-service/internal/repositories"
	"github.com/sbilibin2017/users-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title users-service API
// @version 1.0.0
// @description Microservice for user registration, authentication and lookup
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns,
		kafkaAddr, kafkaTopic,
		jwtSecret, tokenExpDays, tokenExpSeconds, bcryptLogRounds,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns,
		kafkaAddr, kafkaTopic,
		jwtSecret, tokenExpDays, tokenExpSeconds, bcryptLogRounds,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, Kafka, logging, token and hashing
// configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, tokenExpDays, tokenExpSeconds, bcryptLogRounds int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "users")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config; an empty host disables the token block list.
	redisHost = getEnv("REDIS_HOST", "")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if redisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if redisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}

	// Kafka config; an empty address disables event publishing.
	kafkaAddr = getEnv("KAFKA_ADDR", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "users.registered")

	// Token config. The effective lifetime is days + seconds; test
	// environments set days to zero and a few seconds to force expiry.
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if tokenExpDays, err = strconv.Atoi(getEnv("TOKEN_EXPIRATION_DAYS", "30")); err != nil {
		return
	}
	if tokenExpSeconds, err = strconv.Atoi(getEnv("TOKEN_EXPIRATION_SECONDS", "0")); err != nil {
		return
	}

	// Password hashing config
	if bcryptLogRounds, err = strconv.Atoi(getEnv("BCRYPT_LOG_ROUNDS", "13")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, tokenExpDays, tokenExpSeconds, bcryptLogRounds int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", pgHost, pgPort, pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Fatal("PostgreSQL connection error:", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Fatal("PostgreSQL ping failed:", err)
	}

	// Connect to Redis; without it logout keeps the original stateless
	// semantics (tokens stay valid until natural expiry).
	var blocklist *repositories.TokenBlocklistRepository
	if redisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", redisHost, redisPort),
			Password:     redisPassword,
			DB:           redisDB,
			PoolSize:     redisPoolSize,
			MinIdleConns: redisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Fatal("Redis connection error:", err)
		}
		defer rdb.Close()
		blocklist = repositories.NewTokenBlocklistRepository(rdb)
	}

	// Connect to Kafka
	var publisher *events.Publisher
	if kafkaAddr != "" {
		publisher = events.NewPublisher(kafkaAddr, kafkaTopic)
		defer publisher.Close()
	}

	// Initialize token and password services
	tokenExp := time.Duration(tokenExpDays)*24*time.Hour +
		time.Duration(tokenExpSeconds)*time.Second
	jwtSvc := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithExpiration(tokenExp),
	)
	hasher := password.New(password.WithCost(bcryptLogRounds))

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)

	// Initialize services; interface-typed nils keep the optional
	// collaborators disabled when unconfigured.
	var svcBlocklist services.TokenBlocklister
	var guardBlocklist middlewares.Blocklister
	if blocklist != nil {
		svcBlocklist = blocklist
		guardBlocklist = blocklist
	}
	var svcEvents services.EventPublisher
	if publisher != nil {
		svcEvents = publisher
	}

	authService := services.NewAuthService(userReadRepo, userWriteRepo, jwtSvc, hasher, svcBlocklist, svcEvents)
	userService := services.NewUserService(userReadRepo, userWriteRepo, hasher)

	// Initialize handlers
	pingHandler := handlers.NewPingHandler()
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	logoutHandler := handlers.NewLogoutHandler(authService)
	statusHandler := handlers.NewStatusHandler()
	addUserHandler := handlers.NewAddUserHandler(userService)
	getUserHandler := handlers.NewGetUserHandler(userService)
	listUsersHandler := handlers.NewListUsersHandler(userService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Get("/users/ping", pingHandler)
	r.Post("/auth/login", loginHandler)
	r.Get("/users", listUsersHandler)
	r.Get("/users/{id}", getUserHandler)

	// Write routes run inside a per-request transaction so a failed
	// insert leaves no partial row.
	r.Group(func(r chi.Router) {
		r.Use(middlewares.TxMiddleware(db))
		r.Post("/auth/register", registerHandler)
		r.Post("/users", addUserHandler)
	})

	// Protected routes behind the bearer guard
	guard := middlewares.AuthMiddleware(jwtSvc, userReadRepo, guardBlocklist)
	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Get("/auth/logout", logoutHandler)
		r.Get("/auth/status", statusHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
