package peer

import (
	"context"

	"github.com/google/uuid"

	"github.com/dotfed/idhost/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/peer_mock.go -package=mock

// Part is one piece of a multi-part transfer on its way to a recipient.
type Part struct {
	Kind models.PartKind
	Data []byte
}

// Client is the authenticated request/response channel to remote identity
// hosts. The wire format beyond "parts are delivered and a response code
// comes back" is owned by this package alone.
type Client interface {
	// SendParts delivers a full transfer (instruction set first, then every
	// manifest part) to the recipient's perimeter and returns the
	// perimeter's verdict.
	SendParts(ctx context.Context, recipient models.Identity, instructions models.TransferInstructionSet, parts []Part) (models.HostResponseCode, error)

	// SendDeleteRequest asks the recipient to delete the file it committed
	// under the given global transit id. Idempotent on the recipient side.
	SendDeleteRequest(ctx context.Context, recipient models.Identity, targetDrive string, gtid uuid.UUID) (models.HostResponseCode, error)

	// SendFeedUpdate pushes a feed item to a follower's perimeter.
	SendFeedUpdate(ctx context.Context, recipient models.Identity, payload []byte) error

	// SendPushNotification delivers a notification blob to a remote host.
	SendPushNotification(ctx context.Context, recipient models.Identity, payload []byte) error

	// StokeOutbox nudges a remote identity to run its outbox processing
	// cycle now instead of waiting for its next tick.
	StokeOutbox(ctx context.Context, identity models.Identity) error
}
