package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/isocompliance/internal/compliance/chat"
	"github.com/gartstein/isocompliance/internal/compliance/config"
	"github.com/gartstein/isocompliance/internal/compliance/controller"
	"github.com/gartstein/isocompliance/internal/compliance/db"
	"github.com/gartstein/isocompliance/internal/compliance/documents"
	"github.com/gartstein/isocompliance/internal/compliance/events"
	"github.com/gartstein/isocompliance/internal/compliance/handlers"
	"github.com/gartstein/isocompliance/internal/compliance/llm"
	"github.com/gartstein/isocompliance/internal/compliance/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const dbConnectAttempts = 5

// eventPublisher is satisfied by both the Kafka producer and the no-op one.
type eventPublisher interface {
	controller.EventProducer
	Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "compliance",
		Short:        "ISO compliance workflow service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP and gRPC servers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(configPath, func(cfg *config.Config, logger *zap.Logger) error {
					return runServe(cmd.Context(), cfg, logger)
				})
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the demo company into an empty database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(configPath, func(cfg *config.Config, logger *zap.Logger) error {
					return runSeed(cmd.Context(), cfg, logger)
				})
			},
		},
		&cobra.Command{
			Use:   "events",
			Short: "Tail the domain event topic and log every event",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRuntime(configPath, func(cfg *config.Config, logger *zap.Logger) error {
					return runEvents(cmd.Context(), cfg, logger)
				})
			},
		},
	)
	return root
}

// withRuntime loads the configuration and builds the logger shared by
// every subcommand.
func withRuntime(configPath string, run func(*config.Config, *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func(logger *zap.Logger) {
		// syncing stderr fails on some platforms; nothing to do about it
		_ = logger.Sync()
	}(logger)

	return run(cfg, logger)
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	repo, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	if cfg.SeedOnStart {
		if _, err := seed.Run(ctx, repo, logger); err != nil {
			return err
		}
	}

	generator, err := llm.New(ctx, llm.Config{
		Provider:   cfg.LLMProvider,
		Model:      cfg.LLMModel,
		APIKey:     cfg.LLMAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize text generator: %w", err)
	}

	producer := initProducer(cfg, logger)
	defer producer.Close()

	companySvc := controller.NewCompanyService(
		repo,
		documents.NewService(repo, generator, logger),
		chat.NewService(repo, generator, cfg.ChatHistoryWindow, logger),
		producer,
		logger,
	)

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	if err := server.RegisterHTTPHandler(handlers.NewCompanyHandler(companySvc, logger), cfg.JWTSecret); err != nil {
		return fmt.Errorf("failed to register HTTP handlers: %w", err)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, write routes are unauthenticated")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	return waitForShutdown(ctx, server, errCh, logger)
}

func runSeed(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	repo, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	seeded, err := seed.Run(ctx, repo, logger)
	if err != nil {
		return err
	}
	logger.Info("Seed finished", zap.Bool("seeded", seeded))
	return nil
}

func runEvents(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is empty, nothing to consume")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, cfg.Topic, logger)
	defer consumer.Close()

	consumer.RegisterHandler(func(_ context.Context, ev events.Event) error {
		logger.Info("Domain event",
			zap.String("event_type", string(ev.Type)),
			zap.String("company_id", ev.CompanyID.String()),
			zap.Time("occurred_at", ev.OccurredAt),
			zap.Any("payload", ev.Payload),
		)
		return nil
	})

	logger.Info("Consuming domain events", zap.String("topic", cfg.Topic))
	consumer.Run(ctx)
	return nil
}

// initLogger initializes a Zap production logger, or a development one
// for debug level.
func initLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	return zcfg.Build()
}

// initDatabase maps the service configuration to the store configuration.
func initDatabase(cfg *config.Config) *db.Config {
	return &db.Config{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

// connectDatabase opens the store, retrying while the database comes up.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	dbConf := initDatabase(cfg)
	if _, err := dbConf.Dialector(); err != nil {
		return nil, err
	}

	var repo *db.Repository
	op := func() error {
		var err error
		repo, err = db.NewRepository(dbConf)
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Database not ready, retrying",
			zap.Error(err),
			zap.Duration("wait", wait),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), dbConnectAttempts), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repo, nil
}

// initProducer connects to Kafka, falling back to discarding events when
// no broker is configured or reachable.
func initProducer(cfg *config.Config, logger *zap.Logger) eventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, domain events are discarded")
		return events.Noop{}
	}
	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		logger.Error("Failed to initialize Kafka producer, domain events are discarded", zap.Error(err))
		return events.Noop{}
	}
	return producer
}

// waitForShutdown blocks until an interrupt, SIGTERM or server failure, then
// shuts down the servers.
func waitForShutdown(ctx context.Context, server *handlers.Server, errCh <-chan error, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		server.Stop()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	server.Stop()
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("Servers stopped properly")
	return nil
}
