package models

import (
	"time"

	"github.com/google/uuid"
)

// PartKind discriminates the parts of a multi-part host-to-host transfer.
type PartKind string

const (
	PartKeyHeader PartKind = "key-header"
	PartMetadata  PartKind = "metadata"
	PartPayload   PartKind = "payload"
	PartThumbnail PartKind = "thumbnail"
)

// KnownPartKind reports whether k is one of the defined transfer parts.
func KnownPartKind(k PartKind) bool {
	switch k {
	case PartKeyHeader, PartMetadata, PartPayload, PartThumbnail:
		return true
	}
	return false
}

// FilterAction is the verdict of one perimeter filter for one part.
type FilterAction int

const (
	FilterAccept FilterAction = iota
	FilterQuarantine
	FilterReject
)

func (a FilterAction) String() string {
	switch a {
	case FilterAccept:
		return "accept"
	case FilterQuarantine:
		return "quarantine"
	case FilterReject:
		return "reject"
	default:
		return "unknown"
	}
}

// KeyHeader carries the clear-text symmetric key and IV that encrypt one
// file's content. It exists only transiently in process memory; callers must
// Wipe it as soon as the associated payload has been encrypted or decrypted.
type KeyHeader struct {
	AesKey []byte
	Iv     []byte
}

// Wipe zeroes the key material in place. Safe to call more than once.
func (k *KeyHeader) Wipe() {
	for i := range k.AesKey {
		k.AesKey[i] = 0
	}
	for i := range k.Iv {
		k.Iv[i] = 0
	}
}

// EncryptedKeyHeader is a KeyHeader sealed under a shared secret derived from
// the sender/recipient connection. Safe to persist and to put on the wire.
type EncryptedKeyHeader struct {
	// Iv is the random 16-byte value that salts the envelope key derivation.
	Iv []byte `json:"iv"`

	// Data is the authenticated ciphertext of the serialized KeyHeader.
	Data []byte `json:"data"`
}

// IsZero reports whether the header carries no material at all.
func (e EncryptedKeyHeader) IsZero() bool {
	return len(e.Iv) == 0 && len(e.Data) == 0
}

// TransferInstructionSet is the sender-authored manifest of one transfer.
// It travels as the first part and is required to interpret the rest.
// Immutable once sent.
type TransferInstructionSet struct {
	TargetDrive string `json:"targetDrive"`

	// GlobalTransitID, when set, lets recipients address this transfer later
	// (delete/update) idempotently across hosts.
	GlobalTransitID *uuid.UUID `json:"globalTransitId,omitempty"`

	Sender Identity `json:"sender"`

	// EncryptedKeyHeader seals the file's content key for this recipient.
	EncryptedKeyHeader EncryptedKeyHeader `json:"encryptedKeyHeader"`

	// Manifest lists the part kinds the recipient must expect beyond the
	// instruction part itself.
	Manifest []PartKind `json:"manifest"`
}

// Expects reports whether the manifest announces kind.
func (t TransferInstructionSet) Expects(kind PartKind) bool {
	for _, k := range t.Manifest {
		if k == kind {
			return true
		}
	}
	return false
}

// FileMetadata is the descriptive part of a transfer: what the payload is
// and which ACL governs it once committed.
type FileMetadata struct {
	ContentType string             `json:"contentType"`
	AppData     map[string]string  `json:"appData,omitempty"`
	Acl         *AccessControlList `json:"acl,omitempty"`
}

// TransferStatus is the per-recipient outcome of an outbound send.
type TransferStatus int

const (
	// TransferQueued — the delivery was handed to the durable outbox.
	TransferQueued TransferStatus = iota
	// TransferDelivered — the recipient accepted the file.
	TransferDelivered
	// TransferRecipientRejected — the recipient's perimeter refused it.
	TransferRecipientRejected
	// TransferPendingRetry — a transient failure; the outbox will retry.
	TransferPendingRetry
)

func (s TransferStatus) String() string {
	switch s {
	case TransferQueued:
		return "queued"
	case TransferDelivered:
		return "delivered"
	case TransferRecipientRejected:
		return "recipient-rejected"
	case TransferPendingRetry:
		return "pending-retry"
	default:
		return "unknown"
	}
}

// HostResponseCode is what a receiving perimeter reports back to the sender
// when a transfer is finalized.
type HostResponseCode string

const (
	HostAccepted    HostResponseCode = "accepted"
	HostQuarantined HostResponseCode = "quarantined"
	HostRejected    HostResponseCode = "rejected"
)

// TransitOptions controls one outbound send.
type TransitOptions struct {
	Recipients []Identity

	// UseGlobalTransitID mints a transfer-wide correlation id so recipients
	// can later be asked to delete or update the transfer idempotently.
	UseGlobalTransitID bool

	// SendNow delivers inline and reports terminal statuses synchronously.
	// Otherwise the send is queued and the caller observes TransferQueued.
	SendNow bool
}

// IncomingTransferSnapshot is the diagnostics view of one in-progress
// inbound transfer, exposed read-only by the admission service.
type IncomingTransferSnapshot struct {
	CorrelationID uuid.UUID               `json:"correlationId"`
	Sender        Identity                `json:"sender"`
	TargetDrive   string                  `json:"targetDrive"`
	Parts         map[PartKind]FilterAction `json:"parts"`
	StartedAt     time.Time               `json:"startedAt"`
}

// QuarantinedTransferSnapshot describes one finalized transfer whose content
// is held back for manual review.
type QuarantinedTransferSnapshot struct {
	CorrelationID uuid.UUID                 `json:"correlationId"`
	Sender        Identity                  `json:"sender"`
	TargetDrive   string                    `json:"targetDrive"`
	Parts         map[PartKind]FilterAction `json:"parts"`
	QuarantinedAt time.Time                 `json:"quarantinedAt"`
}
