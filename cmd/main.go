package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"gitlab.com/codeprep.net/internal/adapter/crypto"
	"gitlab.com/codeprep.net/internal/adapter/executor"
	"gitlab.com/codeprep.net/internal/adapter/kafka/recordpublisher"
	"gitlab.com/codeprep.net/internal/adapter/memory"
	"gitlab.com/codeprep.net/internal/adapter/metrics"
	"gitlab.com/codeprep.net/internal/adapter/ratelimit"
	redislimit "gitlab.com/codeprep.net/internal/adapter/redis/ratelimit"
	"gitlab.com/codeprep.net/internal/adapter/redis/testcasecache"
	"gitlab.com/codeprep.net/internal/adapter/sqldb"
	"gitlab.com/codeprep.net/internal/adapter/sqldb/recordrepository"
	"gitlab.com/codeprep.net/internal/adapter/sqldb/submissionrepository"
	"gitlab.com/codeprep.net/internal/adapter/sqldb/testcaserepository"
	"gitlab.com/codeprep.net/internal/adapter/sqldb/userrepository"
	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	auth2 "gitlab.com/codeprep.net/internal/core/services/auth"
	"gitlab.com/codeprep.net/internal/core/services/engine"
	"gitlab.com/codeprep.net/internal/core/services/record"
	"gitlab.com/codeprep.net/internal/core/services/submission"
	"gitlab.com/codeprep.net/internal/core/services/testcase"
	"gitlab.com/codeprep.net/internal/core/services/testrun"
	"gitlab.com/codeprep.net/internal/core/services/validator"
	logger2 "gitlab.com/codeprep.net/internal/global/logger"
	"gitlab.com/codeprep.net/internal/handlers"
	http2 "gitlab.com/codeprep.net/internal/http"
)

// storage groups the secondary ports the services need
type storage struct {
	testCases   secondary.TestCaseRepository
	records     secondary.ExecutionRecordRepository
	submissions secondary.SubmissionRepository
	users       secondary.UserPort
	close       func() error
}

func main() {
	InitReader()
	sysCfg := config.NewSystemConfig()
	logger2.Configure(sysCfg.LogLevel)
	logger := logger2.Logger
	defer func() { _ = logger.Sync() }()

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting code execution service", "service", sysCfg.HttpConfig.ServiceName, "mode", sysCfg.ExecutionConfig.Mode)
	if err := run(ctx, sysCfg, logger); err != nil {
		logger.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("successfully shutdown server")
}

func run(ctx context.Context, sysCfg *config.AppConfig, logger primary.Logger) error {
	store, err := setupStorage(ctx, sysCfg.DatabaseConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	}()

	// SECONDARY PORTS
	var limiter secondary.RateLimiter = ratelimit.NewLocalLimiter()
	testCases := store.testCases
	if sysCfg.RedisConfig.Enabled {
		redisClient := setupRedis(sysCfg.RedisConfig)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis is unreachable, cache and rate limit will degrade", "addr", sysCfg.RedisConfig.Url, "error", err)
		}
		testCases = testcasecache.NewTestCaseCache(testCases, redisClient, sysCfg.RedisConfig.TestCaseTTL, logger)
		limiter = redislimit.NewLimiter(redisClient, time.Second)
	}

	publisher, err := setupPublisher(sysCfg.KafkaConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to set up kafka producer: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close publisher", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gradingMetrics := metrics.NewPrometheusMetrics(registry)

	// language handlers
	languages, err := config.LoadLanguageCatalog(sysCfg.ExecutionConfig.CatalogPath)
	if err != nil {
		return err
	}
	registrations, releaseHandlers, err := executor.BuildHandlers(sysCfg.ExecutionConfig, languages, logger)
	if err != nil {
		return fmt.Errorf("failed to build language handlers: %w", err)
	}
	defer func() {
		if err := releaseHandlers(); err != nil {
			logger.Warn("Failed to release language handlers", "error", err)
		}
	}()
	executionEngine := engine.NewEngine(logger)
	for _, reg := range registrations {
		executionEngine.Register(reg.Handler, reg.Aliases...)
	}
	logger.Info("Language handlers ready", "languages", executionEngine.Languages())

	//primary ports
	jwtProvider := crypto.NewJWTService(sysCfg.JwtConfig)

	//services
	testRunSvc := testrun.NewTestRunService(
		validator.NewCodeValidator(sysCfg.ExecutionConfig.MaxCodeLength),
		executionEngine,
		testCases,
		store.records,
		publisher,
		gradingMetrics,
		logger,
		testrun.Options{
			QuickTimeout: sysCfg.ExecutionConfig.QuickTestTimeout,
			FullTimeout:  sysCfg.ExecutionConfig.FullTestTimeout,
			Parallelism:  sysCfg.ExecutionConfig.Parallelism,
		},
	)
	testCaseSvc := testcase.NewTestCaseService(testCases, logger)
	recordSvc := record.NewRecordService(store.records, logger)
	submissionSvc := submission.NewSubmissionService(testRunSvc, store.submissions, gradingMetrics, logger)
	localAuth := auth2.NewLocalAuthService(store.users, jwtProvider, sysCfg.JwtConfig.AdminUserNames, logger)
	serviceProvider := http2.NewServiceProvider(testRunSvc, testCaseSvc, recordSvc, submissionSvc, localAuth, languages, executionEngine.Resolve)

	mw := handlers.New(jwtProvider, limiter, handlers.RateLimitOptions{
		Enabled:  sysCfg.RateLimitConfig.Enabled,
		Requests: sysCfg.RateLimitConfig.Requests,
		Window:   sysCfg.RateLimitConfig.Window,
	}, logger)

	//server
	httpServer := http2.NewServer(sysCfg.HttpConfig.Port, sysCfg.HttpConfig.ServiceName, *serviceProvider, mw, registry, logger)
	if err := httpServer.Init(); err != nil {
		return err
	}
	serveErr := httpServer.Start(ctx)

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sysCfg.HttpConfig.ShutdownTimeout)
	defer cancel()
	return httpServer.Stop(shutdownCtx)
}

// setupStorage picks the repositories for the configured driver
func setupStorage(ctx context.Context, cfg *config.DatabaseConfig, logger primary.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			testCases:   memory.NewTestCaseRepository(),
			records:     memory.NewExecutionRecordRepository(),
			submissions: memory.NewSubmissionRepository(),
			users:       memory.NewUserRepository(),
			close:       func() error { return nil },
		}, nil
	}

	db, err := sqldb.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := sqldb.Migrate(ctx, db, cfg.Schema); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Database schema is up to date", "driver", cfg.Driver)
	}
	return &storage{
		testCases:   testcaserepository.New(db, logger, cfg.Schema),
		records:     recordrepository.New(db, logger, cfg.Schema),
		submissions: submissionrepository.New(db, logger, cfg.Schema),
		users:       userrepository.New(db, logger, cfg.Schema),
		close:       db.Close,
	}, nil
}

// setupRedis sets up the Redis connection
func setupRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func setupPublisher(cfg *config.KafkaConfig, logger primary.Logger) (secondary.ExecutionEventPublisher, error) {
	if !cfg.Enabled() {
		return recordpublisher.NopPublisher{}, nil
	}
	producer, err := recordpublisher.NewSyncProducer(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Publishing execution events", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return recordpublisher.NewPublisher(producer, cfg.Topic, logger), nil
}

// InitReader loads <env>.env when an environment name is passed as the
// first argument, and .env otherwise if one exists.
func InitReader() {
	if len(os.Args) >= 2 {
		environment := os.Args[1]
		if err := godotenv.Load(environment + ".env"); err != nil {
			log.Fatalf("Error loading %s.env file", environment)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
}
