package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/account"
	accountPostgres "github.com/frahmantamala/hostel-management/internal/account/postgres"
	"github.com/frahmantamala/hostel-management/internal/auth"
	authPostgres "github.com/frahmantamala/hostel-management/internal/auth/postgres"
	"github.com/frahmantamala/hostel-management/internal/core/breaker"
	"github.com/frahmantamala/hostel-management/internal/core/database"
	"github.com/frahmantamala/hostel-management/internal/core/events"
	"github.com/frahmantamala/hostel-management/internal/core/metrics"
	"github.com/frahmantamala/hostel-management/internal/core/ratelimit"
	"github.com/frahmantamala/hostel-management/internal/hostel"
	hostelPostgres "github.com/frahmantamala/hostel-management/internal/hostel/postgres"
	"github.com/frahmantamala/hostel-management/internal/invoice"
	invoicePostgres "github.com/frahmantamala/hostel-management/internal/invoice/postgres"
	"github.com/frahmantamala/hostel-management/internal/registration"
	registrationPostgres "github.com/frahmantamala/hostel-management/internal/registration/postgres"
	"github.com/frahmantamala/hostel-management/internal/transport"
	"github.com/frahmantamala/hostel-management/internal/transport/rest"
	"github.com/frahmantamala/hostel-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

var specPath string

func init() {
	httpServerCmd.Flags().StringVar(&specPath, "spec", "api/openapi.yml", "OpenAPI document served at /openapi.yml")
}

// Dependencies holds everything the commands share. Close releases the pools.
type Dependencies struct {
	Config  *internal.Config
	DB      *gorm.DB
	SQL     *sqlx.DB
	Redis   *redis.Client
	Bus     *events.EventBus
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	Limiter      *ratelimit.Limiter
	Auth         *auth.Service
	Accounts     *account.Service
	Hostels      *hostel.Service
	Invoices     *invoice.Service
	Registration *registration.Service
}

func startHTTPServer() {
	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	deps, err := initializeDependencies(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	router := chi.NewRouter()
	setupRoutes(router, deps)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go registration.RunSweeper(ctx, deps.Registration, config.Registration.SweepInterval, log)

	addr := fmt.Sprintf(":%d", config.Server.Port)
	log.Info("Starting HTTP server", "address", addr, "env", config.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: config.Server.ReadHeaderTimeout,
		ReadTimeout:       config.Server.ReadTimeout,
		WriteTimeout:      config.Server.WriteTimeout,
		IdleTimeout:       config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
		if err := deps.Bus.Drain(shutdownCtx); err != nil {
			log.Warn("Event handlers still running at shutdown", "error", err)
		}
		deps.Close()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	log.Info("Server stopped")
}

func setupRoutes(router *chi.Mux, deps *Dependencies) {
	cfg := deps.Config
	base := transport.NewBaseHandler(deps.Logger, !cfg.App.IsProduction())

	health := rest.NewHealthHandler().
		Register("database", deps.SQL.PingContext)
	if deps.Limiter != nil {
		health.Register("redis", deps.Limiter.Ping)
	}

	opts := rest.Options{
		Guards:         auth.NewGuards(deps.Auth, base),
		Hostels:        deps.Hostels,
		Health:         health,
		AllowedOrigins: cfg.Server.AllowedOriginList(),
		TrustProxy:     cfg.Server.TrustProxy,
		SpecPath:       specPath,
		Logger:         deps.Logger,
	}
	if cfg.Observability.Metrics.Enabled {
		opts.Metrics = deps.Metrics
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:         auth.NewHandler(deps.Auth, base),
		Account:      account.NewHandler(deps.Accounts, base),
		Registration: registration.NewHandler(base, deps.Registration),
		Invoice:      invoice.NewHandler(base, deps.Invoices, cfg.Invoice.GuestWindow),
		Hostel:       hostel.NewHandler(base, deps.Hostels),
	}, opts)
}

func initializeDependencies(config *internal.Config) (*Dependencies, error) {
	logger.Init(config.App.Env,
		logger.WithLevel(config.Observability.Logging.Level),
		logger.WithFormat(config.Observability.Logging.Format))
	log := logger.LoggerWrapper()

	db, err := database.Open(database.Options{
		DSN:             config.Database.Source,
		MaxOpenConns:    config.Database.MaxOpenConns,
		MaxIdleConns:    config.Database.MaxIdleConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize health pool: %w", err)
	}

	m := metrics.New(prometheus.NewRegistry())
	if err := m.Register(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	bus := events.NewEventBus(log)
	subscribeAuditLog(bus, log)

	deps := &Dependencies{
		Config:  config,
		DB:      db,
		SQL:     sqlDB,
		Bus:     bus,
		Metrics: m,
		Logger:  log,
	}

	tokens := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.TokenDuration)
	authOpts := []auth.Option{
		auth.WithMetrics(m),
		auth.WithBcryptCost(config.Security.BCryptCost),
	}
	if config.Redis.Enabled {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		deps.Limiter = ratelimit.New(deps.Redis, ratelimit.Config{
			MaxLoginAttempts: config.RateLimit.MaxLoginAttempts,
			LoginCooldown:    config.RateLimit.LoginCooldown,
		})
		authOpts = append(authOpts, auth.WithThrottle(deps.Limiter))
	}

	tx := database.NewTransactor(db)
	accounts := accountPostgres.NewAccountRepository(db)

	deps.Auth = auth.NewService(authPostgres.NewRepository(db), tokens, log, authOpts...)
	deps.Hostels = hostel.NewService(hostelPostgres.NewHostelRepository(db), accounts, tx, log)
	deps.Accounts = account.NewService(accounts, deps.Auth, deps.Hostels, tx, log,
		account.Config{BcryptCost: config.Security.BCryptCost})

	renderer, err := invoice.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice template: %w", err)
	}
	deps.Invoices = invoice.NewService(invoicePostgres.NewInvoiceRepository(db), renderer,
		invoice.NewOSFileStore(config.Invoice.OutputDir), bus, m, log,
		invoice.Config{MaxNumberAttempts: config.Invoice.MaxNumberAttempts})

	deps.Registration = registration.NewService(registration.Deps{
		Repo:      registrationPostgres.NewRegistrationRepository(db),
		Accounts:  accounts,
		Invoices:  deps.Invoices,
		Tx:        tx,
		Breaker:   breaker.New(breaker.NameInvoice, log),
		Publisher: bus,
		Metrics:   m,
		Logger:    log,
	}, registration.Config{
		TTL:        config.Registration.TTL,
		BcryptCost: config.Security.BCryptCost,
	})

	return deps, nil
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.SQL.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			d.Logger.Error("Database close error", "error", err)
		}
	}
}

// initDB opens the sqlx pool used for health pings.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(1)
	dbConn.SetMaxOpenConns(2)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
