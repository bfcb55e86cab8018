package app

import (
	"github.com/avc/frete-console/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const corsMaxAge = 300

// setupRouter создает и настраивает роутер
func setupRouter(deps *dependencies, allowedOrigins []string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	setupMiddleware(r, allowedOrigins, logger)

	// Маршруты
	setupRoutes(r, deps, logger)

	return r
}

// setupMiddleware настраивает middleware для роутера
func setupMiddleware(r *chi.Mux, allowedOrigins []string, logger *zap.Logger) {
	r.Use(handlers.RequestIDMiddleware())
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.RecoveryMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))
}

// setupRoutes настраивает маршруты приложения
func setupRoutes(r *chi.Mux, deps *dependencies, logger *zap.Logger) {
	h := deps.handlers

	// Health check эндпоинты
	r.Get("/health", h.health.Health)
	r.Get("/ready", h.health.Ready)

	// Публичные эндпоинты
	r.Post("/api/auth/login", h.auth.Login)
	r.Post("/api/redirect", h.auth.RememberRedirect)

	// Защищенные эндпоинты
	r.Group(func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(deps.sessions, logger))

		// Websocket без сжатия
		r.Get("/ws", h.realtime.Serve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))

			r.Post("/api/auth/logout", h.auth.Logout)
			r.Get("/api/me", h.auth.Me)

			r.Get("/api/transportadoras", h.clients.Carriers)
			r.Get("/api/clientes/{id}", h.clients.Get)
			r.Get("/api/clientes/{id}/transportadoras", h.clients.CarrierEditor)

			r.Get("/api/creditos/{clienteId}/saldo", h.credits.Balance)
			r.Get("/api/creditos/{clienteId}/extrato", h.credits.Statement)
			r.Get("/api/creditos/{clienteId}/resumo", h.credits.Summary)
			r.Get("/api/pix/recargas", h.credits.ListRecharges)
			r.Post("/api/pix/recargas", h.credits.CreateRecharge)
			r.Get("/api/boletos", h.boletos.List)

			// Только администратор
			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireAdmin(logger))

				r.Get("/api/clientes", h.clients.List)
				r.Post("/api/clientes", h.clients.Create)
				r.Put("/api/clientes/{id}", h.clients.Update)
				r.Delete("/api/clientes/{id}", h.clients.Delete)
				r.Put("/api/clientes/{id}/transportadoras", h.clients.SaveCarriers)

				r.Get("/api/planos", h.plans.List)
				r.Post("/api/planos", h.plans.Create)
				r.Get("/api/planos/rascunho", h.plans.GetDraft)
				r.Put("/api/planos/rascunho", h.plans.SaveDraft)
				r.Delete("/api/planos/rascunho", h.plans.DiscardDraft)
				r.Get("/api/planos/{id}", h.plans.Get)
				r.Put("/api/planos/{id}", h.plans.Update)
				r.Delete("/api/planos/{id}", h.plans.Delete)

				r.Get("/api/jobs", h.admin.ListJobs)
				r.Post("/api/jobs", h.admin.CreateJob)
				r.Get("/api/jobs/{id}", h.admin.GetJob)

				r.Get("/api/usuarios", h.admin.ListUsers)
				r.Post("/api/usuarios", h.admin.CreateUser)
				r.Put("/api/usuarios/{id}", h.admin.UpdateUser)
				r.Delete("/api/usuarios/{id}", h.admin.DeleteUser)

				r.Post("/api/creditos/manual", h.credits.AddManualCredit)
				r.Post("/api/pix/pagamento-manual", h.credits.ConfirmManualPayment)
				r.Post("/api/boletos", h.boletos.Issue)
				r.Post("/api/boletos/cancelar", h.boletos.Cancel)
				r.Post("/api/boletos/webhook", h.boletos.ConfigureWebhook)
				r.Post("/api/fechamentos", h.admin.ClosePeriod)
				r.Post("/api/comprovantes/{tipo}/proximo", h.credits.NextReceipt)
			})
		})
	})
}
