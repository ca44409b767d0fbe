package store

import (
	"context"

	"github.com/dotfed/idhost/internal/config"
	"github.com/dotfed/idhost/internal/logger"
)

// Storages aggregates all repositories backed by the shared database.
type Storages struct {
	Outbox      OutboxRepository
	Connections ConnectionRepository
}

// NewStorages connects to the database and wires every repository.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}

	return &Storages{
		Outbox:      NewOutboxRepository(db, log),
		Connections: NewConnectionRepository(db, log),
	}, nil
}
