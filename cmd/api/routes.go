package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"bookreview/internal/book"
	"bookreview/internal/httpx"
	"bookreview/internal/ingest"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/readinglist"
	"bookreview/internal/review"
	"bookreview/internal/user"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	Log       logrus.FieldLogger
	DB        pinger
	JWTSecret string
	Books     *book.HTTPHandler
	Reviews   *review.HTTPHandler
	Users     *user.HTTPHandler
	Favorites *readinglist.HTTPHandler
	Ingest    *ingest.HTTPHandler
	Metrics   *httpx.Metrics
	RateLimit *httpx.RateLimitMiddleware

	CORSOrigins  []string
	EnableHSTS   bool
	MaxBodyBytes int64
}

func newRouter(d routerDeps) http.Handler {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		return httpx.AuthMiddleware(d.JWTSecret)(h)
	}
	// Public reads that personalise the response when a token is present.
	optional := func(h http.HandlerFunc) http.Handler {
		return httpx.OptionalAuth(d.JWTSecret)(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, httpx.AuthMiddleware(d.JWTSecret), httpx.RequireRole(crypto.RoleAdmin))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]string{"status": "ok"}, nil)
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			httpx.LoggerFrom(r).WithError(err).Warn("readiness check failed")
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Database not ready", nil)
			return
		}
		httpx.JSONSuccess(w, r, map[string]string{"status": "ready"}, nil)
	})
	mux.Handle("GET /metrics", d.Metrics.Handler())

	mux.HandleFunc("POST /v1/users/register", d.Users.Register)
	mux.HandleFunc("POST /v1/users/login", d.Users.Login)
	mux.Handle("GET /v1/me", authed(d.Users.Me))
	mux.HandleFunc("GET /v1/users/{id}", d.Users.Profile)
	mux.Handle("PUT /v1/users/{id}", authed(d.Users.UpdateProfile))
	mux.Handle("GET /v1/users/{id}/reviews", optional(d.Reviews.ListByUser))
	mux.HandleFunc("GET /v1/users/{id}/favorites", d.Favorites.List)
	mux.Handle("POST /v1/users/{id}/favorites", authed(d.Favorites.Add))
	mux.Handle("DELETE /v1/users/{id}/favorites/{bookId}", authed(d.Favorites.Remove))

	mux.HandleFunc("GET /v1/books", d.Books.List)
	mux.HandleFunc("GET /v1/books/{id}", d.Books.Get)
	mux.Handle("GET /v1/books/{id}/reviews", optional(d.Reviews.ListByBook))
	mux.Handle("POST /v1/books", admin(d.Books.Create))
	mux.Handle("POST /v1/books/import", admin(d.Books.Import))
	mux.Handle("POST /v1/books/import/batch", admin(d.Ingest.ImportBatch))
	mux.Handle("PUT /v1/books/{id}", admin(d.Books.Update))
	mux.Handle("DELETE /v1/books/{id}", admin(d.Books.Delete))

	mux.Handle("GET /v1/reviews/latest", optional(d.Reviews.ListLatest))
	mux.Handle("GET /v1/reviews/{id}", optional(d.Reviews.Get))
	mux.Handle("POST /v1/reviews", authed(d.Reviews.Create))
	mux.Handle("PUT /v1/reviews/{id}", authed(d.Reviews.Update))
	mux.Handle("PATCH /v1/reviews/{id}", authed(d.Reviews.Update))
	mux.Handle("DELETE /v1/reviews/{id}", authed(d.Reviews.Delete))
	mux.Handle("POST /v1/reviews/{id}/vote", authed(d.Reviews.Vote))

	return httpx.Chain(mux,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.Log),
		httpx.RecoveryMiddleware,
		d.Metrics.Middleware,
		httpx.SecurityHeadersMiddleware(d.EnableHSTS),
		httpx.CORSMiddleware(d.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(d.MaxBodyBytes),
		d.RateLimit.Middleware,
	)
}
