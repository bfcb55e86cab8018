package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/avc/frete-console/internal/backend"
	"github.com/avc/frete-console/internal/cache"
	"github.com/avc/frete-console/internal/config"
	"github.com/avc/frete-console/internal/domain"
	"github.com/avc/frete-console/internal/handlers"
	"github.com/avc/frete-console/internal/notify"
	"github.com/avc/frete-console/internal/realtime"
	"github.com/avc/frete-console/internal/repository/postgres"
	"github.com/avc/frete-console/internal/scheduler"
	"github.com/avc/frete-console/internal/service"
	"github.com/avc/frete-console/internal/session"
	"github.com/avc/frete-console/internal/utils/jwt"
	"github.com/avc/frete-console/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	jobTimeout            = 2 * time.Minute
	sessionSweepSchedule  = "@every 10m"
	redirectPurgeSchedule = "@every 30m"
)

// repositories содержит все репозитории приложения
type repositories struct {
	drafts    *postgres.DraftRepository
	redirects *postgres.RedirectRepository
	receipts  *postgres.ReceiptCounterRepository
}

// services содержит все сервисы приложения
type services struct {
	clients  domain.ClientService
	carriers domain.CarrierService
	plans    domain.PlanService
	jobs     domain.JobService
	users    domain.UserService
	boletos  domain.BoletoService
	pix      domain.PixService
	credits  domain.CreditService
	closing  domain.ClosingService
	state    domain.StateService
}

// handlerSet содержит все хендлеры приложения
type handlerSet struct {
	auth     *handlers.AuthHandler
	clients  *handlers.ClientsHandler
	plans    *handlers.PlansHandler
	admin    *handlers.AdminHandler
	credits  *handlers.CreditsHandler
	boletos  *handlers.BoletosHandler
	realtime *handlers.RealtimeHandler
	health   *handlers.HealthHandler
}

// realtimeSet поток изменений и его подписчики
type realtimeSet struct {
	feed       *realtime.Feed
	reconciler *realtime.PaymentReconciler
	ledger     *realtime.LedgerListener
	sessions   *realtime.SessionListener
}

// dependencies содержит все зависимости приложения
type dependencies struct {
	repos      *repositories
	services   *services
	handlers   *handlerSet
	realtime   *realtimeSet
	sessions   *session.Manager
	hub        *notify.Hub
	workerPool *worker.Pool
	scheduler  *scheduler.Scheduler
}

// initDependencies создает все зависимости приложения
func initDependencies(cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) (*dependencies, error) {
	// Создание репозиториев
	repos := &repositories{
		drafts:    postgres.NewDraftRepository(dbPool),
		redirects: postgres.NewRedirectRepository(dbPool),
		receipts:  postgres.NewReceiptCounterRepository(dbPool),
	}

	// Клиент backend и кэш запросов
	queryCache := cache.New(cache.DefaultTTL)
	client := backend.NewClient(backend.ClientConfig{
		APIURL:  cfg.APIURL,
		BaseURL: cfg.BackendURL,
		APIKey:  cfg.BackendKey,
		Timeout: cfg.HTTPTimeout,
	}, logger)
	functions := backend.NewFunctions(client)

	// Сессии и push уведомления
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	sessions := session.NewManager(client, jwtManager, logger)
	client.OnUnauthorized(sessions.HandleUnauthorized)

	hub := notify.NewHub(logger)
	notify.SetCheckOrigin(originChecker(cfg.AllowedHosts))
	queryCache.OnInvalidate(hub.Invalidate)
	sessions.OnLogout(func(s *domain.Session) {
		msg := notify.Message{Type: notify.TypeLogout, Text: "Sessão encerrada"}
		if err := hub.SendToSession(s.ID, msg); err != nil && !errors.Is(err, notify.ErrNoListeners) {
			logger.Warn("failed to push logout", zap.String("session_id", s.ID), zap.Error(err))
		}
	})

	// Создание сервисов
	svcs := &services{
		clients:  service.NewClientService(client, queryCache),
		carriers: service.NewCarrierService(client, queryCache, logger),
		plans:    service.NewPlanService(client),
		jobs:     service.NewJobService(client),
		users:    service.NewUserService(client),
		boletos:  service.NewBoletoService(client, functions, logger),
		pix:      service.NewPixService(client, functions, queryCache),
		credits:  service.NewCreditService(client, functions, queryCache, logger),
		closing:  service.NewClosingService(functions, logger),
		state:    service.NewStateService(repos.drafts, repos.redirects, repos.receipts),
	}

	// Поток изменений обрабатывается шардированным worker pool
	workerPool := worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueueSize, logger)
	feed := realtime.NewFeed(realtime.FeedConfig{URL: cfg.RealtimeURL, APIKey: cfg.BackendKey}, workerPool, logger)

	reconciler := realtime.NewPaymentReconciler(feed, queryCache, hub, logger)
	reconciler.OnPaymentConfirmed(closePaymentModal(hub, logger))

	rt := &realtimeSet{
		feed:       feed,
		reconciler: reconciler,
		ledger:     realtime.NewLedgerListener(feed, queryCache, logger),
		sessions:   realtime.NewSessionListener(feed, sessions, logger),
	}

	// Создание handlers
	hdlrs := &handlerSet{
		auth:     handlers.NewAuthHandler(sessions, svcs.state, logger),
		clients:  handlers.NewClientsHandler(svcs.clients, svcs.carriers, logger),
		plans:    handlers.NewPlansHandler(svcs.plans, svcs.state, logger),
		admin:    handlers.NewAdminHandler(svcs.jobs, svcs.users, svcs.closing, logger),
		credits:  handlers.NewCreditsHandler(svcs.credits, svcs.pix, svcs.state, logger),
		boletos:  handlers.NewBoletosHandler(svcs.boletos, logger),
		realtime: handlers.NewRealtimeHandler(hub, logger, rt.reconciler, rt.ledger),
		health:   handlers.NewHealthHandler(dbPool, feed, cfg.SiteName, logger),
	}

	jobs, err := initScheduler(cfg, svcs.closing, sessions, repos.redirects, logger)
	if err != nil {
		return nil, err
	}

	return &dependencies{
		repos:      repos,
		services:   svcs,
		handlers:   hdlrs,
		realtime:   rt,
		sessions:   sessions,
		hub:        hub,
		workerPool: workerPool,
		scheduler:  jobs,
	}, nil
}

// initScheduler регистрирует периодические задачи
func initScheduler(
	cfg *config.Config,
	closing domain.ClosingService,
	sessions scheduler.Sweeper,
	redirects scheduler.RedirectPurger,
	logger *zap.Logger,
) (*scheduler.Scheduler, error) {
	s := scheduler.New(logger, jobTimeout)

	if err := s.AddJob(sessionSweepSchedule, scheduler.NewSessionSweepJob(sessions, logger)); err != nil {
		return nil, err
	}
	if err := s.AddJob(redirectPurgeSchedule, scheduler.NewRedirectPurgeJob(redirects, logger)); err != nil {
		return nil, err
	}

	if cfg.ClosingSchedule != "" {
		if err := s.AddJob(cfg.ClosingSchedule, scheduler.NewClosingJob(closing, logger)); err != nil {
			return nil, err
		}
		logger.Info("monthly closing scheduled", zap.String("schedule", cfg.ClosingSchedule))
	}

	return s, nil
}

// closePaymentModal закрывает окно PIX в браузерах клиента после оплаты
func closePaymentModal(hub *notify.Hub, logger *zap.Logger) realtime.ConfirmFunc {
	return func(ctx context.Context, recharge domain.PixRecharge) error {
		msg := notify.Message{
			Type:    notify.TypeCloseModal,
			Payload: map[string]string{"txid": recharge.TxID},
		}
		if err := hub.Send(recharge.ClientID, msg); err != nil && !errors.Is(err, notify.ErrNoListeners) {
			logger.Warn("failed to close payment modal", zap.String("txid", recharge.TxID), zap.Error(err))
		}
		return nil
	}
}

// originChecker проверка Origin для websocket; "*" разрешает все
func originChecker(allowed []string) func(r *http.Request) bool {
	hosts := make(map[string]struct{}, len(allowed))
	for _, h := range allowed {
		if h == "*" {
			return func(*http.Request) bool { return true }
		}
		if u, err := url.Parse(h); err == nil && u.Host != "" {
			hosts[u.Host] = struct{}{}
			continue
		}
		hosts[h] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if u.Host == r.Host {
			return true
		}
		_, ok := hosts[u.Host]
		return ok
	}
}
