package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/models"
)

const (
	// claimLease is how long a popped row stays claimed before a later pop
	// may reclaim it. Covers a process crash between pop and commit/cancel.
	claimLease = 10 * time.Minute

	// retryDelay pushes a cancelled entry's next run time forward so a
	// permanently failing entry cannot monopolize the front of the queue.
	retryDelay = 30 * time.Second
)

// outboxRepository is the PostgreSQL-backed implementation of
// [OutboxRepository]. One row per pending delivery; the pop marker column
// implements the claim discipline described on the interface.
type outboxRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewOutboxRepository constructs an [OutboxRepository] backed by db.
func NewOutboxRepository(db *DB, logger *logger.Logger) OutboxRepository {
	logger.Debug().Msg("creating outbox repository")
	return &outboxRepository{
		db:     db,
		logger: logger,
	}
}

// Enqueue implements [OutboxRepository].
func (r *outboxRepository) Enqueue(ctx context.Context, entry models.OutboxEntry) (models.OutboxEntry, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, enqueueOutboxEntry,
		int(entry.Kind), string(entry.Recipient), entry.FileRef, entry.Payload)

	if err := row.Scan(&entry.ID, &entry.Attempts, &entry.NextRunTime, &entry.CreatedAt); err != nil {
		log.Err(err).Str("func", "*outboxRepository.Enqueue").Msg("error inserting outbox entry")
		return models.OutboxEntry{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return entry, nil
}

// PopBatch implements [OutboxRepository]. The claim and the read happen in
// one transaction: stamp up to maxCount runnable rows with a fresh marker,
// then select the stamped rows back.
func (r *outboxRepository) PopBatch(ctx context.Context, maxCount int) ([]models.OutboxEntry, models.PopMarker, error) {
	log := logger.FromContext(ctx)

	if maxCount <= 0 {
		return nil, models.PopMarker{}, nil
	}

	marker := models.NewPopMarker()

	claimSQL, claimArgs, err := buildClaimQuery(marker.String(), maxCount, int(claimLease.Seconds()))
	if err != nil {
		return nil, models.PopMarker{}, fmt.Errorf("build claim query: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, models.PopMarker{}, fmt.Errorf("begin pop transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, claimSQL, claimArgs...)
	if err != nil {
		log.Err(err).Str("func", "*outboxRepository.PopBatch").Msg("error claiming outbox batch")
		return nil, models.PopMarker{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	claimed, err := result.RowsAffected()
	if err == nil && claimed == 0 {
		return nil, models.PopMarker{}, tx.Commit()
	}

	rows, err := tx.QueryContext(ctx, selectClaimedEntries, marker.String())
	if err != nil {
		log.Err(err).Str("func", "*outboxRepository.PopBatch").Msg("error reading claimed entries")
		return nil, models.PopMarker{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var entries []models.OutboxEntry
	for rows.Next() {
		var entry models.OutboxEntry
		var kind int
		var recipient string
		if err := rows.Scan(&entry.ID, &kind, &recipient, &entry.FileRef, &entry.Payload,
			&entry.Attempts, &entry.NextRunTime, &entry.CreatedAt); err != nil {
			log.Err(err).Str("func", "*outboxRepository.PopBatch").Msg("error: scanning error")
			return nil, models.PopMarker{}, err
		}
		entry.Kind = models.EntryKind(kind)
		entry.Recipient = models.Identity(recipient)
		entry.Marker = marker
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, models.PopMarker{}, err
	}

	if err := tx.Commit(); err != nil {
		return nil, models.PopMarker{}, fmt.Errorf("commit pop transaction: %w", err)
	}

	return entries, marker, nil
}

// Commit implements [OutboxRepository].
func (r *outboxRepository) Commit(ctx context.Context, marker models.PopMarker) error {
	return r.finishClaim(ctx, commitMarker, "*outboxRepository.Commit", marker.String())
}

// CommitEntry implements [OutboxRepository].
func (r *outboxRepository) CommitEntry(ctx context.Context, marker models.PopMarker, entryID int64) error {
	return r.finishClaim(ctx, commitMarkerEntry, "*outboxRepository.CommitEntry", marker.String(), entryID)
}

// Cancel implements [OutboxRepository].
func (r *outboxRepository) Cancel(ctx context.Context, marker models.PopMarker) error {
	return r.finishClaim(ctx, cancelMarker, "*outboxRepository.Cancel", marker.String(), retryInterval())
}

// CancelEntry implements [OutboxRepository].
func (r *outboxRepository) CancelEntry(ctx context.Context, marker models.PopMarker, entryID int64) error {
	return r.finishClaim(ctx, cancelMarkerEntry, "*outboxRepository.CancelEntry", marker.String(), entryID, retryInterval())
}

// PendingCount implements [OutboxRepository].
func (r *outboxRepository) PendingCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, countPendingEntries).Scan(&count); err != nil {
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return count, nil
}

// finishClaim executes a commit/cancel statement and enforces the claim
// integrity invariant: touching zero rows means the marker is unknown or
// already resolved, which indicates a scheduler bug and must not pass
// silently.
func (r *outboxRepository) finishClaim(ctx context.Context, query, fn string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error resolving outbox claim")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		log.Error().Str("func", fn).Msg("claim resolution matched no rows")
		return ErrStaleMarker
	}

	return nil
}

func retryInterval() string {
	return fmt.Sprintf("%d seconds", int(retryDelay.Seconds()))
}
