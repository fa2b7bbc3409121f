package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/infra/config"
	"github.com/filipal/graph-platform-iam/internal/infra/database"
	kafkainfra "github.com/filipal/graph-platform-iam/internal/infra/kafka"
	"github.com/filipal/graph-platform-iam/internal/infra/logger"
	"github.com/filipal/graph-platform-iam/internal/infra/security"
	"github.com/filipal/graph-platform-iam/internal/infra/telemetry"
	postgresrepo "github.com/filipal/graph-platform-iam/internal/repository/postgres"
	"github.com/filipal/graph-platform-iam/internal/transport/http/middleware"
	"github.com/filipal/graph-platform-iam/internal/transport/http/routes"
	"github.com/filipal/graph-platform-iam/internal/usecase"
)

// Application bundles the running service and its owned resources.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

// New wires configuration into a ready-to-run application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokenService, err := security.NewTokenService(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	passwordValidator := security.PasswordPolicy(cfg.PasswordPolicy.MinLength, cfg.PasswordPolicy.MinStrength)

	authService, err := usecase.NewAuthService(repos.Accounts, repos.Roles, tokenService)
	if err != nil {
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	registrationService := usecase.NewRegistrationService(repos.Accounts, repos.Roles, eventPublisher, passwordValidator).
		WithLogger(log)
	roleService := usecase.NewRoleService(repos.Accounts, repos.Roles, eventPublisher, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Database: pool,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Roles:        roleService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		producer: producer,
		tracer:   tracer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
		}
	}()
	defer func() {
		if a.tracer != nil {
			if err := a.tracer.Shutdown(context.Background()); err != nil {
				a.logger.Warn("shutdown tracer provider", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting IAM API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return <-serverErrCh
}
