package main

import (
	"context"
	"net/http"
	"time"

	"bookshelf/internal/addflow"
	"bookshelf/internal/httpx"
	"bookshelf/internal/library"
	"bookshelf/internal/readingsession"
	"bookshelf/internal/search"
	"bookshelf/internal/stats"
)

// app holds the wired services behind the HTTP surface.
type app struct {
	library  *library.Service
	sessions *readingsession.Service
	addflows *addflow.Sessions
	provider search.Provider
	stats    *stats.Service
	ready    func(ctx context.Context) error
}

func newApp(ctx context.Context, cfg config, libRepo library.Repository, sessRepo readingsession.Repository, provider search.Provider, ready func(context.Context) error) *app {
	libService := library.NewService(libRepo, library.NewMemory(libRepo))
	sessService := readingsession.NewService(sessRepo, libService)
	workflow := addflow.NewWorkflow(provider, libService)

	return &app{
		library:  libService,
		sessions: sessService,
		addflows: addflow.NewSessions(ctx, workflow, libService, cfg.AddIdleTTL),
		provider: provider,
		stats:    stats.NewService(libService, sessService),
		ready:    ready,
	}
}

func newRouter(ctx context.Context, a *app, cfg config) http.Handler {
	libraryHandler := library.NewHTTPHandler(a.library)
	sessionHandler := readingsession.NewHTTPHandler(a.sessions)
	addHandler := addflow.NewHTTPHandler(a.addflows)
	searchHandler := search.NewHTTPHandler(a.provider)
	statsHandler := stats.NewHTTPHandler(a.stats)

	auth := httpx.AuthMiddleware(cfg.JWTSecret)
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := a.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /v1/search", searchHandler.Search)

	router.Handle("GET /v1/me/add", protected(addHandler.Get))
	router.Handle("POST /v1/me/add/search", protected(addHandler.Search))
	router.Handle("POST /v1/me/add/select", protected(addHandler.Select))
	router.Handle("POST /v1/me/add/status", protected(addHandler.ChooseStatus))
	router.Handle("POST /v1/me/add/review", protected(addHandler.Submit))
	router.Handle("POST /v1/me/add/acknowledge", protected(addHandler.Acknowledge))
	router.Handle("POST /v1/me/add/dismiss", protected(addHandler.Dismiss))
	router.Handle("POST /v1/me/add/retry", protected(addHandler.Retry))
	router.Handle("POST /v1/me/add/cancel", protected(addHandler.Cancel))

	router.Handle("GET /v1/me/library", protected(libraryHandler.List))
	router.Handle("GET /v1/me/library/{id}", protected(libraryHandler.Get))
	router.Handle("PATCH /v1/me/library/{id}/status", protected(libraryHandler.UpdateStatus))
	router.Handle("PUT /v1/me/library/{id}/rating", protected(libraryHandler.UpdateRating))
	router.Handle("PUT /v1/me/library/{id}/review", protected(libraryHandler.UpdateReview))
	router.Handle("DELETE /v1/me/library/{id}", protected(libraryHandler.Delete))

	router.Handle("POST /v1/me/sessions", protected(sessionHandler.Log))
	router.Handle("GET /v1/me/sessions", protected(sessionHandler.List))

	router.Handle("GET /v1/me/stats", protected(statsHandler.Get))

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.CORSMiddleware(cfg.CORSOrigins),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}
