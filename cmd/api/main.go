package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/ingest"
	"bookreview/internal/platform/database"
	"bookreview/internal/platform/logger"
	"bookreview/internal/platform/openlibrary"
	"bookreview/internal/readinglist"
	"bookreview/internal/review"
	"bookreview/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Open(ctx, database.PoolConfig{
		DSN:             cfg.DatabaseDSN,
		MaxConns:        cfg.DatabaseMaxConn,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 5 * time.Minute,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	log.WithField("dsn", database.RedactDSN(cfg.DatabaseDSN)).Info("database connection OK")

	lookup := openlibrary.NewClient(cfg.OpenLibraryUserAgent, cfg.OpenLibraryRPS, cfg.OpenLibraryMaxRetries)

	books := book.NewService(book.NewPostgresRepo(pool, cfg.DatabaseTimeout), lookup)
	reviews := review.NewService(review.NewPostgresStore(pool, cfg.DatabaseTimeout), books)
	users := user.NewService(user.NewPostgresRepo(pool, cfg.DatabaseTimeout), cfg.JWTSecret, cfg.JWTTTL)

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	handler := newRouter(routerDeps{
		Log:          log,
		DB:           pool,
		JWTSecret:    cfg.JWTSecret,
		Books:        book.NewHTTPHandler(books),
		Reviews:      review.NewHTTPHandler(reviews),
		Users:        user.NewHTTPHandler(users),
		Favorites:    readinglist.NewHTTPHandler(readinglist.NewService(readinglist.NewPostgresRepo(pool, cfg.DatabaseTimeout))),
		Ingest:       ingest.NewHTTPHandler(ingest.NewService(books, log)),
		Metrics:      httpx.NewMetrics(),
		RateLimit:    limiter,
		CORSOrigins:  cfg.CORSOrigins,
		EnableHSTS:   cfg.EnableHSTS,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
