// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "svpay-balance/internal/api"
	"svpay-balance/internal/api/handler"
	"svpay-balance/internal/auth"
	"svpay-balance/internal/config"
	"svpay-balance/internal/domain"
	"svpay-balance/internal/repository"
	"svpay-balance/internal/repository/postgres"
	"svpay-balance/internal/service"
	"svpay-balance/internal/util"
	"svpay-balance/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	CardRepository        repository.CardRepository
	TransactionRepository repository.TransactionRepository
	UserRepository        repository.UserRepository

	// Services
	CardService service.CardService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := postgres.EnsureSchema(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	// 4. Initialize Repositories
	app.CardRepository = postgres.NewCardRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	app.CardService = service.NewCardService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor for non-transactional reads
		app.CardRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	var authMW func(http.Handler) http.Handler
	if app.Config.AuthEnabled {
		authMW = auth.BasicAuth(func(ctx context.Context, username string) (*domain.User, error) {
			return app.UserRepository.GetUserByUsername(ctx, app.DB, username)
		}, app.Logger)
		app.Logger.Info("Basic auth enabled for management routes.")
	}

	cardHandler := handler.NewCardHandler(app.CardService, app.Logger)
	app.HTTPHandler = router.NewRouter(cardHandler, authMW, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
