package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"bookreview/internal/platform/database"
	"bookreview/internal/platform/logger"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)
	goose.SetLogger(log)

	if err := run(context.Background(), cfg, *command, *name); err != nil {
		log.WithError(err).WithField("command", *command).Error("migration failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg migrateConfig, command, name string) error {
	if command == "create" {
		if name == "" {
			return errNameRequired
		}
		return goose.Create(nil, cfg.MigrationsDir, name, "sql")
	}

	pool, err := database.Open(ctx, database.PoolConfig{DSN: cfg.DatabaseDSN, MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, cfg.MigrationsDir)
	case "down":
		return goose.DownContext(ctx, db, cfg.MigrationsDir)
	case "status":
		return goose.StatusContext(ctx, db, cfg.MigrationsDir)
	default:
		return unknownCommandError(command)
	}
}
