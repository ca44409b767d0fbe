package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dotfed/idhost/internal/config"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/migrations"
)

// DB wraps the shared relational connection. The outbox and connection
// tables are the only state shared across processes on the same node.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// NewConnectPostgres opens the database, pings it, and applies embedded
// migrations.
func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err := conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, err
	}

	if err := migrations.Migrate(conn); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error applying migrations")
		return nil, err
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	return &DB{
		DB:     conn,
		logger: log,
	}, nil
}

func postgresError(err error) string {
	var pgErr *pgconn.PgError
	// if postgres returns error
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
