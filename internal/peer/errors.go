package peer

import "errors"

var (
	// ErrRecipientUnreachable indicates a transport failure or a 5xx from
	// the remote host. Deliveries failing this way are retried through the
	// durable outbox.
	ErrRecipientUnreachable = errors.New("recipient unreachable")

	// ErrRecipientRejected indicates the remote perimeter refused the
	// request. Terminal; not retried.
	ErrRecipientRejected = errors.New("recipient rejected request")

	// ErrNoActiveConnection indicates no usable connection (and therefore
	// no shared secret) exists with the counterpart identity.
	ErrNoActiveConnection = errors.New("no active connection with recipient")
)
