package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/erensaridag/careermatch/internal"
	"github.com/erensaridag/careermatch/internal/application"
	applicationdb "github.com/erensaridag/careermatch/internal/application/postgres"
	"github.com/erensaridag/careermatch/internal/auth"
	authdb "github.com/erensaridag/careermatch/internal/auth/postgres"
	"github.com/erensaridag/careermatch/internal/core/events"
	"github.com/erensaridag/careermatch/internal/posting"
	postingdb "github.com/erensaridag/careermatch/internal/posting/postgres"
	"github.com/erensaridag/careermatch/internal/transport/rest"
	"github.com/erensaridag/careermatch/internal/user"
	userdb "github.com/erensaridag/careermatch/internal/user/postgres"
	"github.com/erensaridag/careermatch/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config             *internal.Config
	DB                 *sqlx.DB
	GormDB             *gorm.DB
	Router             *chi.Mux
	Logger             *slog.Logger
	EventBus           *events.EventBus
	AuthHandler        *auth.Handler
	UserHandler        *user.Handler
	PostingHandler     *posting.Handler
	ApplicationHandler *application.Handler
	Roles              *auth.RoleAuthorization
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB,
		deps.AuthHandler, deps.UserHandler, deps.PostingHandler, deps.ApplicationHandler,
		deps.Roles, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already-open pgx pool so both layers share one
	// connection limit.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)

	accountRepo := authdb.NewRepository(gormDB)
	profileRepo := userdb.NewProfileRepository(gormDB)
	postingRepo := postingdb.NewRepository(gormDB)
	applicationRepo := applicationdb.NewRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(accountRepo, profileRepo, tokenGen,
		config.Security.BCryptCost, config.Security.ResetTokenDuration, appLogger)
	userService := user.NewService(profileRepo, appLogger)
	postingService := posting.NewService(postingRepo, appLogger)
	applicationService := application.NewService(applicationRepo, postingRepo, profileRepo, eventBus, appLogger)

	notifications := application.NewEventHandler(appLogger)
	notifications.RegisterEventHandlers(eventBus)

	return &Dependencies{
		Config:             config,
		DB:                 db,
		GormDB:             gormDB,
		Router:             chi.NewRouter(),
		Logger:             appLogger,
		EventBus:           eventBus,
		AuthHandler:        auth.NewHandler(authService),
		UserHandler:        user.NewHandler(userService),
		PostingHandler:     posting.NewHandler(postingService, userService),
		ApplicationHandler: application.NewHandler(applicationService),
		Roles:              auth.NewRoleAuthorization(appLogger),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
