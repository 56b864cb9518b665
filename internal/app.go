// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	redis "github.com/redis/go-redis/v9"

	router "nova-ledger/internal/api"
	"nova-ledger/internal/api/handler"
	"nova-ledger/internal/config"
	"nova-ledger/internal/domain"
	"nova-ledger/internal/repository"
	"nova-ledger/internal/repository/cache"
	"nova-ledger/internal/repository/postgres"
	"nova-ledger/internal/security"
	"nova-ledger/internal/seed"
	"nova-ledger/internal/service"
	"nova-ledger/internal/util"
	"nova-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	AccountRepository     repository.AccountRepository
	TransactionRepository repository.TransactionRepository
	CharityStore          repository.CharityStore

	// Services
	TransferService service.TransferService
	CharityService  service.CharityService

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

	// 3. Connect to the funds ledger database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := postgres.EnsureSchema(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	// 4. Connect to the charity store
	redisClient, err := db.NewRedisClient(app.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.Redis = redisClient
	app.Logger.Info("Redis connection established.")

	// 5. Repositories
	app.AccountRepository = postgres.NewAccountRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.CharityStore = cache.NewCharityStore(app.Redis)

	// 6. Seed demo data
	hasher := security.NewBcryptHasher(app.Config.BcryptCost)
	if err := seed.Accounts(ctx, app.DB, app.AccountRepository, hasher, app.Logger); err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	if err := seed.Charities(ctx, app.CharityStore, app.Logger); err != nil {
		return fmt.Errorf("failed to seed charities: %w", err)
	}

	// 7. Services
	guard := service.NewAuthGuard(hasher)
	app.TransferService = service.NewTransferService(
		app.DB,
		app.AccountRepository,
		app.TransactionRepository,
		guard,
		domain.MerchantUpiID,
		app.Config.DebitAttempts,
		app.Logger,
	)
	app.CharityService = service.NewCharityService(app.CharityStore, 0, app.Logger)

	// 8. HTTP router
	paymentHandler := handler.NewPaymentHandler(app.TransferService, app.CharityService, app.Logger)
	charityHandler := handler.NewCharityHandler(app.CharityService, app.Logger)
	app.HTTPHandler = router.NewRouter(paymentHandler, charityHandler, app.Logger)

	app.Logger.Info("Application components initialized.")
	return nil
}

// Shutdown gracefully closes application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Error closing database connection", "error", err)
			return fmt.Errorf("error closing database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Error closing redis connection", "error", err)
			return fmt.Errorf("error closing redis connection: %w", err)
		}
		app.Logger.Info("Redis connection closed.")
	}
	return nil
}
