package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/models"
)

// connectionRepository is the PostgreSQL-backed implementation of
// [ConnectionRepository], one row per remote identity this host trusts.
type connectionRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewConnectionRepository constructs a [ConnectionRepository] backed by db.
func NewConnectionRepository(db *DB, logger *logger.Logger) ConnectionRepository {
	logger.Debug().Msg("creating connection repository")
	return &connectionRepository{
		db:     db,
		logger: logger,
	}
}

// GetConnection implements [ConnectionRepository].
func (r *connectionRepository) GetConnection(ctx context.Context, identity models.Identity) (models.Connection, error) {
	log := logger.FromContext(ctx)

	var conn models.Connection
	var ident string
	var circles []byte

	row := r.db.QueryRowContext(ctx, getConnectionByIdentity, string(identity.Normalize()))
	if err := row.Scan(&ident, &conn.IsConnected, &conn.Revoked, &circles, &conn.SharedSecret, &conn.PublicKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Connection{}, ErrConnectionNotFound
		}
		log.Err(err).Str("func", "*connectionRepository.GetConnection").Msg("error: scanning error")
		return models.Connection{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	conn.Identity = models.Identity(ident)
	conn.Circles = decodeCircles(circles)

	return conn, nil
}

// UpsertConnection implements [ConnectionRepository].
func (r *connectionRepository) UpsertConnection(ctx context.Context, conn models.Connection) error {
	log := logger.FromContext(ctx)

	if !conn.Identity.IsValid() {
		return ErrInvalidConnection
	}

	_, err := r.db.ExecContext(ctx, upsertConnection,
		string(conn.Identity.Normalize()), conn.IsConnected, conn.Revoked,
		encodeCircles(conn.Circles), conn.SharedSecret, conn.PublicKey)
	if err != nil {
		log.Err(err).Str("func", "*connectionRepository.UpsertConnection").Msg("error upserting connection")

		switch postgresError(err) {
		case pgerrcode.StringDataRightTruncationDataException:
			return ErrInvalidConnection
		default:
			return fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return nil
}
