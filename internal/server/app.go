// Package server initializes and runs the duochat backend: it opens the
// database, runs migrations, assembles repositories, services, the
// connection hub and the HTTP server, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/dmitrijs2005/duochat/internal/server/config"
	"github.com/dmitrijs2005/duochat/internal/server/httpapi"
	"github.com/dmitrijs2005/duochat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/duochat/internal/server/services"
	"github.com/dmitrijs2005/duochat/internal/server/ws"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userRepo := rm.Users(db)
	messageRepo := rm.Messages(db)

	hub := ws.NewHub(logger)

	userService := services.NewUserService(userRepo, cfg, logger)
	messageService := services.NewMessageService(messageRepo, userRepo, hub, cfg, logger)

	srv := httpapi.NewServer(cfg, logger, userService, messageService, hub)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
