package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind is the tagged variant of outbox entry purposes. The outbox
// processor dispatches on it with an exhaustive switch, so adding a new
// transit-queue purpose is a compile-visible change.
type EntryKind int

const (
	EntryFileTransfer EntryKind = iota
	EntryFeedDistribution
	EntryPushNotification
)

func (k EntryKind) String() string {
	switch k {
	case EntryFileTransfer:
		return "file-transfer"
	case EntryFeedDistribution:
		return "feed-distribution"
	case EntryPushNotification:
		return "push-notification"
	default:
		return "unknown"
	}
}

// PopMarker is the claim handle returned by a batch pop. Committing it
// removes the claimed entries permanently; cancelling returns them to
// pending. A crash between pop and commit/cancel leaves entries claimed
// until the claim expires, after which they are poppable again.
type PopMarker uuid.UUID

// NewPopMarker mints a fresh marker.
func NewPopMarker() PopMarker {
	return PopMarker(uuid.New())
}

// UUID returns the marker as a uuid for SQL parameters and logs.
func (m PopMarker) UUID() uuid.UUID {
	return uuid.UUID(m)
}

func (m PopMarker) String() string {
	return uuid.UUID(m).String()
}

// OutboxEntry is one durable pending delivery.
type OutboxEntry struct {
	ID        int64
	Kind      EntryKind
	Recipient Identity

	// FileRef is the local internal reference of the file to deliver.
	// Unused for push notifications.
	FileRef string

	// Payload is the serialized kind-specific content (e.g. the
	// per-recipient transfer instruction set).
	Payload []byte

	Attempts    int
	NextRunTime time.Time
	CreatedAt   time.Time

	// Marker is set only on entries returned by a pop.
	Marker PopMarker
}
