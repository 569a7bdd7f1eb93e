package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/fieldops-app/internal/auth"
	"github.com/diewo77/fieldops-app/internal/config"
	"github.com/diewo77/fieldops-app/internal/handlers"
	"github.com/diewo77/fieldops-app/internal/services"
	"github.com/diewo77/fieldops-app/internal/storage"
)

// App is the main application handler that sets up all routes.
type App struct {
	handler http.Handler
	log     *zap.Logger
}

// NewApp wires services and handlers behind the access gate. Signup and
// signin are the only routes reachable without a verified token; everything
// else under /api/ requires one.
func NewApp(db *gorm.DB, cfg *config.Config, blobs storage.BlobStore, log *zap.Logger) *App {
	tokens := auth.NewTokenService(
		[]byte(cfg.Auth.TokenSecret),
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
	)
	directory := services.NewDirectory(db, cfg.Auth.BcryptCost)
	fields := services.NewCustomFields(db)

	mux := http.NewServeMux()

	// Public routes (no auth required)
	handlers.NewAuthHandler(directory, tokens, log).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Everything else under /api/ sits behind the gate.
	protected := http.NewServeMux()
	handlers.NewUserHandler(directory, fields, log).Register(protected)
	handlers.NewCompanyHandler(directory).Register(protected)
	handlers.NewSiteHandler(directory, fields, log).Register(protected)
	handlers.NewRoleHandler(directory).Register(protected)
	handlers.NewTeamHandler(directory).Register(protected)
	handlers.NewCustomFieldHandler(fields).Register(protected)
	handlers.NewUploadHandler(blobs, cfg.App.BlobBase, log).Register(protected)
	mux.Handle("/api/", auth.RequireAuth(protected))

	gate := auth.NewGate(tokens)
	app := &App{log: log}
	app.handler = gate.Middleware(app.withLogging(mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// withLogging adds request logging middleware.
func (a *App) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}
