package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avc/frete-console/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App представляет приложение
type App struct {
	config *config.Config
	logger *zap.Logger
	db     *pgxpool.Pool
	router *chi.Mux
	deps   *dependencies
	server *http.Server
}

// NewApp создает новое приложение
func NewApp() (*App, error) {
	ctx := context.Background()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// Инициализация базы данных состояния и миграции
	dbPool, err := initDatabase(ctx, cfg.DatabaseURI, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")

	// Инициализация зависимостей
	deps, err := initDependencies(cfg, dbPool, logger)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to init dependencies: %w", err)
	}

	// Настройка роутера
	router := setupRouter(deps, cfg.AllowedHosts, logger)

	// Создание HTTP сервера
	server := createServer(cfg.RunAddress, router)

	return &App{
		config: cfg,
		logger: logger,
		db:     dbPool,
		router: router,
		deps:   deps,
		server: server,
	}, nil
}

// Run запускает приложение
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск worker pool и потока изменений
	a.deps.workerPool.Start(ctx)
	a.logger.Info("worker pool started")

	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		if err := a.deps.realtime.feed.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("realtime feed stopped", zap.Error(err))
		}
	}()

	if err := a.deps.realtime.sessions.Start(ctx); err != nil {
		// Без подписки сессии завершаются только по истечении срока
		a.logger.Warn("failed to subscribe to session changes", zap.Error(err))
	}

	a.deps.scheduler.Start()
	a.logger.Info("scheduler started")

	// Запуск HTTP сервера и ожидание сигнала завершения
	if err := a.runServer(ctx); err != nil {
		return err
	}

	// Graceful shutdown
	a.shutdown(cancel, feedDone)

	return nil
}
