package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-finance-ledger/docs"
	"github.com/sbilibin2017/gw-finance-ledger/internal/facades"
	"github.com/sbilibin2017/gw-finance-ledger/internal/handlers"
	"github.com/sbilibin2017/gw-finance-ledger/internal/jobs"
	"github.com/sbilibin2017/gw-finance-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-finance-ledger/internal/ledger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-finance-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-finance-ledger/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	pb "github.com/sbilibin2017/proto-exchange/exchange"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config is the full application configuration read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisExpSecond    int

	GWHost string
	GWPort string

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecretKey string
	JWTExpSecond int

	AuditSchedule string
}

// @title gw-finance-ledger API
// @version 1.0.0
// @description Personal finance ledger: wallets, categorized transactions, CSV imports and derived balances
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// newKafkaWriter builds the ledger event writer. Events are flushed after a
// short batch window so a publish never waits long on the default one.
func newKafkaWriter(cfg config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, database, Redis, gRPC, Kafka, JWT and audit configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}
	if cfg.RedisExpSecond, err = getInt("REDIS_EXP_SECOND", "60"); err != nil {
		return
	}

	// gRPC config
	cfg.GWHost = getEnv("GW_EXCHANGER_HOST", "localhost")
	cfg.GWPort = getEnv("GW_EXCHANGER_PORT", "50051")

	// Kafka config, publishing is disabled without brokers
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "ledger-events")

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.JWTExpSecond, err = getInt("JWT_EXP_SECOND", "60"); err != nil {
		return
	}

	cfg.AuditSchedule = getEnv("BALANCE_AUDIT_SCHEDULE", jobs.DefaultAuditSchedule)

	return
}

// run initializes the logger, database, Redis, gRPC client, Kafka writer and
// HTTP server. It sets up routes, starts the balance audit and handles
// graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel, "service", "gw-finance-ledger", "version", buildVersion); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection error: %w", err)
	}
	defer rdb.Close()

	// Connect to gRPC exchanger
	grpcAddr := fmt.Sprintf("%s:%s", cfg.GWHost, cfg.GWPort)
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to gRPC service at %s: %w", grpcAddr, err)
	}
	defer conn.Close()
	exchangeFacade := facades.NewExchangeRatesGRPCFacade(pb.NewExchangeServiceClient(conn))

	// Kafka writer for ledger events
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := newKafkaWriter(cfg)
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("Kafka writer configured", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(time.Duration(cfg.JWTExpSecond)*time.Second),
	)

	// Initialize repositories
	txGetter := repositories.TxFromContext
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	walletWriteRepo := repositories.NewWalletWriteRepository(db, txGetter)
	walletReadRepo := repositories.NewWalletReadRepository(db, txGetter)
	walletBalanceRepo := repositories.NewWalletBalanceRepository(db, txGetter)
	transactionWriteRepo := repositories.NewTransactionWriteRepository(db, txGetter)
	transactionReadRepo := repositories.NewTransactionReadRepository(db, txGetter)
	categoryRepo := repositories.NewCategoryRepository(db, txGetter)
	rateCacheRepo := repositories.NewExchangeRateCacheRepository(rdb, time.Duration(cfg.RedisExpSecond)*time.Second)

	// Ledger engine
	engine := ledger.NewEngine(transactionReadRepo, walletBalanceRepo)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens)
	walletService := services.NewWalletService(walletWriteRepo, walletReadRepo, engine, exchangeFacade, rateCacheRepo)
	transactionService := services.NewTransactionService(
		transactionWriteRepo, transactionReadRepo, walletReadRepo, categoryRepo, engine, kafkaWriter,
	)
	categoryService := services.NewCategoryService(categoryRepo, transactionReadRepo)

	// Balance audit
	auditor := jobs.NewBalanceAuditor(walletBalanceRepo, engine, repositories.NewTransactor(db),
		jobs.WithSchedule(cfg.AuditSchedule),
	)
	if err := auditor.Start(); err != nil {
		return err
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	tx := middlewares.TxMiddleware(db)

	// Public routes
	r.Post("/register", handlers.NewRegisterHandler(authService))
	r.Post("/login", handlers.NewLoginHandler(authService))

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", handlers.NewListWalletsHandler(walletService))
		r.With(tx).Post("/", handlers.NewCreateWalletHandler(walletService))
		r.With(tx).Post("/calculate-balance", handlers.NewCalculateBalanceHandler(walletService))

		// Protected routes with JWT middleware
		r.With(middlewares.AuthMiddleware(tokens)).Get("/from-user", handlers.NewWalletsFromUserHandler(walletService))

		r.Get("/{id}", handlers.NewGetWalletHandler(walletService))
		r.Get("/{id}/balance", handlers.NewConvertBalanceHandler(walletService))
		r.With(tx).Put("/{id}", handlers.NewEditWalletHandler(walletService))
		r.With(tx).Delete("/{id}", handlers.NewDeleteWalletHandler(walletService))
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", handlers.NewListTransactionsHandler(transactionService))
		r.With(tx).Post("/", handlers.NewCreateTransactionHandler(transactionService))
		r.With(tx).Post("/import", handlers.NewImportTransactionsHandler(transactionService))
		r.With(tx).Delete("/import/{csvImportId}", handlers.NewRollbackImportHandler(transactionService))

		r.Get("/{id}", handlers.NewGetTransactionHandler(transactionService))
		r.With(tx).Put("/{id}", handlers.NewEditTransactionHandler(transactionService))
		r.With(tx).Delete("/{id}", handlers.NewDeleteTransactionHandler(transactionService))
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", handlers.NewListCategoriesHandler(categoryService))
		r.With(tx).Post("/", handlers.NewCreateCategoryHandler(categoryService))

		r.Get("/{id}", handlers.NewGetCategoryHandler(categoryService))
		r.With(tx).Delete("/{id}", handlers.NewDeleteCategoryHandler(categoryService))
	})

	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		auditor.Stop(context.Background())
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}
	auditor.Stop(shutdownCtx)

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
