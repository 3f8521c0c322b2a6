package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/internal/library"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/platform/sqlite"
	"bookshelf/internal/readingsession"
	"bookshelf/internal/search"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 15 * time.Second

func main() {
	loadEnvFiles()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer st.close()

	a := newApp(ctx, cfg, st.library, st.sessions, newProvider(cfg), st.ready)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: newRouter(ctx, a, cfg),
		// search calls to the provider dominate request time
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s storage=%s search_provider=%s", cfg.Addr, cfg.Storage, cfg.SearchProvider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

type storage struct {
	library  library.Repository
	sessions readingsession.Repository
	ready    func(ctx context.Context) error
	close    func()
}

func openStorage(ctx context.Context, cfg config) (storage, error) {
	if cfg.Storage == "sqlite" {
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return storage{}, err
		}
		log.Printf("sqlite database ready path=%s", cfg.SQLitePath)
		return storage{
			library:  library.NewSQLiteRepo(db),
			sessions: readingsession.NewSQLiteRepo(db),
			ready:    db.PingContext,
			close:    func() { _ = db.Close() },
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return storage{}, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Printf("cannot ping database (%s)", redactDSN(cfg.DSN))
		return storage{}, err
	}
	log.Println("database connection OK")
	return storage{
		library:  library.NewPostgresRepo(pool, cfg.DBTimeout),
		sessions: readingsession.NewPostgresRepo(pool, cfg.DBTimeout),
		ready:    pool.Ping,
		close:    pool.Close,
	}, nil
}

func newProvider(cfg config) search.Provider {
	if cfg.SearchProvider == "googlebooks" {
		return search.NewGoogleBooks(googlebooks.NewClient(cfg.GoogleAPIKey, cfg.SearchRPS))
	}
	return search.NewOpenLibrary(openlibrary.NewClient(cfg.UserAgent, cfg.SearchRPS))
}
