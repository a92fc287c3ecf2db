package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/mcdev12/livequiz/go/internal/dbconfig"
	"github.com/mcdev12/livequiz/go/internal/migrations"
	"github.com/rs/zerolog/log"
)

// setupDatabase opens the lib/pq handle for the tournament catalog and the pgx
// pool for answers and registrations.
func setupDatabase(ctx context.Context, dbCfg dbconfig.Config, migrate bool) (*sql.DB, *pgxpool.Pool, error) {
	if migrate {
		if err := migrations.Up(dbCfg.DSN()); err != nil {
			return nil, nil, err
		}
	}

	database, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	log.Info().
		Str("user", dbCfg.User).
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("database", dbCfg.Database).
		Msg("connected to database")
	return database, pool, nil
}
