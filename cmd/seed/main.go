package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/ingest"
	"bookreview/internal/platform/apperr"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/platform/database"
	"bookreview/internal/platform/logger"
	"bookreview/internal/platform/openlibrary"
	"bookreview/internal/user"
)

type seedConfig struct {
	DatabaseDSN   string `env:"DB_DSN,required"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminUsername string `env:"SEED_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`

	ImportISBNs           []string `env:"SEED_IMPORT_ISBNS" envSeparator:","`
	OpenLibraryUserAgent  string   `env:"OPENLIBRARY_USER_AGENT" envDefault:"bookreview/1.0"`
	OpenLibraryRPS        float64  `env:"OPENLIBRARY_RPS" envDefault:"1"`
	OpenLibraryMaxRetries int      `env:"OPENLIBRARY_MAX_RETRIES" envDefault:"2"`
}

func main() {
	config.LoadEnvFiles()

	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	if err := run(context.Background(), cfg, log); err != nil {
		log.WithError(err).Error("seed failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seedConfig, log logrus.FieldLogger) error {
	pool, err := database.Open(ctx, database.PoolConfig{DSN: cfg.DatabaseDSN, MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	lookup := openlibrary.NewClient(cfg.OpenLibraryUserAgent, cfg.OpenLibraryRPS, cfg.OpenLibraryMaxRetries)
	books := book.NewService(book.NewPostgresRepo(pool, 5*time.Second), lookup)
	created, skipped, err := seedBooks(ctx, books, sampleBooks())
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"created": created, "skipped": skipped}).Info("books seeded")

	if len(cfg.ImportISBNs) > 0 {
		if _, err := ingest.NewService(books, log).Run(ctx, cfg.ImportISBNs); err != nil {
			return fmt.Errorf("import isbns: %w", err)
		}
	}

	if cfg.AdminEmail == "" {
		return nil
	}
	if err := seedAdmin(ctx, user.NewPostgresRepo(pool, 5*time.Second), cfg); err != nil {
		return err
	}
	log.WithField("email", cfg.AdminEmail).Info("admin account ready")
	return nil
}

type bookCreator interface {
	Create(ctx context.Context, in book.Input) (book.Book, error)
}

// seedBooks inserts each book, skipping ISBNs that already exist so the
// command can be re-run.
func seedBooks(ctx context.Context, svc bookCreator, inputs []book.Input) (created, skipped int, err error) {
	for _, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("seed %q: %w", in.Title, err)
		}
		created++
	}
	return created, skipped, nil
}

func seedAdmin(ctx context.Context, repo user.Repository, cfg seedConfig) error {
	if err := crypto.ValidatePasswordStrength(cfg.AdminPassword); err != nil {
		return fmt.Errorf("SEED_ADMIN_PASSWORD: %w", err)
	}
	hash, err := crypto.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = repo.Create(ctx, &user.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(cfg.AdminEmail),
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         crypto.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	return err
}

func ptr[T any](v T) *T { return &v }

func sampleBooks() []book.Input {
	return []book.Input{
		{ISBN: ptr("9780441013593"), Title: "Dune", Author: "Frank Herbert", PublishedYear: ptr(1965),
			Genres: []string{"Science Fiction"}, Description: "A desert planet, a noble house and a prophecy."},
		{ISBN: ptr("9780547928227"), Title: "The Hobbit", Author: "J.R.R. Tolkien", PublishedYear: ptr(1937),
			Genres: []string{"Fantasy"}, Description: "Bilbo Baggins leaves the Shire with thirteen dwarves."},
		{ISBN: ptr("9780451524935"), Title: "1984", Author: "George Orwell", PublishedYear: ptr(1949),
			Genres: []string{"Fiction", "Dystopia"}, Description: "Winston Smith works at the Ministry of Truth."},
		{ISBN: ptr("9780061120084"), Title: "To Kill a Mockingbird", Author: "Harper Lee", PublishedYear: ptr(1960),
			Genres: []string{"Fiction"}, Description: "A lawyer in Alabama defends a wrongly accused man."},
		{ISBN: ptr("9780141439518"), Title: "Pride and Prejudice", Author: "Jane Austen", PublishedYear: ptr(1813),
			Genres: []string{"Romance", "Classic"}, Description: "Elizabeth Bennet and Mr. Darcy misjudge each other."},
		{ISBN: ptr("9780062316097"), Title: "Sapiens", Author: "Yuval Noah Harari", PublishedYear: ptr(2011),
			Genres: []string{"History"}, Description: "A brief history of humankind."},
		{ISBN: ptr("9780553380163"), Title: "A Brief History of Time", Author: "Stephen Hawking", PublishedYear: ptr(1988),
			Genres: []string{"Science"}, Description: "From the big bang to black holes."},
		{ISBN: ptr("9780307474278"), Title: "The Da Vinci Code", Author: "Dan Brown", PublishedYear: ptr(2003),
			Genres: []string{"Mystery"}, Description: "A symbologist is drawn into a murder at the Louvre."},
	}
}
