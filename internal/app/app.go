package app

import (
	"context"
	"log/slog"

	"library-service/internal/auth"
	"library-service/internal/book"
	"library-service/internal/config"
	"library-service/internal/db"
	"library-service/internal/fine"
	"library-service/internal/ledger"
	"library-service/internal/librarian"
	"library-service/internal/loan"
	"library-service/internal/logger"
	"library-service/internal/metrics"
	"library-service/internal/reader"
	"library-service/internal/reservation"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

// App assembles the ledger and auth services over one database handle. The
// presentation layer (menus, exporters) embeds this and calls the services;
// there is no network surface.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *bun.DB
	Ledger *ledger.Service
	Auth   *auth.Service
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext("library-service", "1.0.0")
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	m, err := metrics.New("library-service", slogLogger)
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := m.Database.RegisterDB(database.DB, otel.Meter("library-service")); err != nil {
		slogLogger.Warn("failed to register db pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, Models()...); err != nil {
		db.Close(database)
		return nil, err
	}

	ledgerService := ledger.NewService(database, slogLogger, m)
	authService := auth.NewService(
		reader.NewRepository(database, m),
		librarian.NewRepository(database, m),
		slogLogger,
	)

	slogLogger.Info("application initialized successfully")

	return &App{
		Config: cfg,
		Logger: slogLogger,
		DB:     database,
		Ledger: ledgerService,
		Auth:   authService,
	}, nil
}

// Models lists every persisted entity, in migration order.
func Models() []interface{} {
	return []interface{}{
		(*book.Book)(nil),
		(*reader.Reader)(nil),
		(*librarian.Librarian)(nil),
		(*loan.Loan)(nil),
		(*reservation.Reservation)(nil),
		(*fine.Fine)(nil),
	}
}

func (a *App) Close() {
	a.Logger.Info("closing application")
	db.Close(a.DB)
}
