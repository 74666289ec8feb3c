package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/auth"
	"github.com/jhoicas/emprestei/internal/application/realtime"
	"github.com/jhoicas/emprestei/internal/application/report"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Realtime  *realtime.Service
	ReportUC  *report.LoanReportUseCase
	JWTSecret string
	Logger    zerolog.Logger
	KeepAlive time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	requireAuth := AuthMiddleware(deps.JWTSecret)
	api.Get("/auth/me", requireAuth, authHandler.Me)

	// Árbol de datos en tiempo real
	db := api.Group("/db", requireAuth)
	dbHandler := NewDBHandler(deps.Realtime, deps.Logger, deps.KeepAlive)
	db.Get("/*", dbHandler.Get)
	db.Put("/*", dbHandler.Set)
	db.Patch("/*", dbHandler.Update)
	db.Post("/*", dbHandler.Push)

	// Reportes
	reports := api.Group("/reports", requireAuth)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/loans", reportHandler.Loans)
}
