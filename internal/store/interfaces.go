package store

import (
	"context"

	"github.com/dotfed/idhost/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// OutboxRepository is the durable, crash-safe delivery queue.
//
// Claim discipline: PopBatch stamps pending rows with a fresh marker and
// returns them; the entries are neither delivered nor removed yet. The
// caller finishes the claim with exactly one of Commit (entries removed
// permanently) or Cancel (entries return to pending with a pushed-back run
// time). A crash between pop and commit/cancel leaves the rows stamped
// until the claim lease expires, after which a later pop may claim them
// again — at-least-once, never lost.
type OutboxRepository interface {
	// Enqueue appends a pending entry. ID, attempts and timestamps are
	// assigned by the store.
	Enqueue(ctx context.Context, entry models.OutboxEntry) (models.OutboxEntry, error)

	// PopBatch claims up to maxCount runnable entries under one marker.
	// An empty batch returns a zero marker and no error.
	PopBatch(ctx context.Context, maxCount int) ([]models.OutboxEntry, models.PopMarker, error)

	// Commit permanently removes every entry claimed under marker.
	// Committing a marker that claims nothing returns ErrStaleMarker.
	Commit(ctx context.Context, marker models.PopMarker) error

	// Cancel returns every entry claimed under marker to pending, bumping
	// its attempt count and pushing its next run time forward so permanently
	// failing entries cannot starve the rest of the queue.
	// Cancelling a marker that claims nothing returns ErrStaleMarker.
	Cancel(ctx context.Context, marker models.PopMarker) error

	// CancelEntry returns a single claimed entry to pending, leaving the
	// rest of its batch claimed. Used when entries of one batch succeed and
	// fail independently.
	CancelEntry(ctx context.Context, marker models.PopMarker, entryID int64) error

	// CommitEntry permanently removes a single claimed entry.
	CommitEntry(ctx context.Context, marker models.PopMarker, entryID int64) error

	// PendingCount reports how many entries are unclaimed and runnable,
	// for diagnostics.
	PendingCount(ctx context.Context) (int, error)
}

// ConnectionRepository stores the trust relationships (ICRs) this host
// maintains with remote identities.
type ConnectionRepository interface {
	// GetConnection returns the connection record for identity, or
	// ErrConnectionNotFound.
	GetConnection(ctx context.Context, identity models.Identity) (models.Connection, error)

	// UpsertConnection creates or replaces the connection record.
	UpsertConnection(ctx context.Context, conn models.Connection) error
}
