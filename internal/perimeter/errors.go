package perimeter

import "errors"

var (
	// ErrUnknownTransfer indicates no in-progress transfer exists for the
	// correlation id — it never existed, was finalized, or was discarded
	// after a rejection or an idle sweep.
	ErrUnknownTransfer = errors.New("unknown transfer")

	// ErrUnknownPartKind indicates a part kind outside the defined set, or
	// one the transfer's manifest never announced.
	ErrUnknownPartKind = errors.New("unknown part kind")

	// ErrInvalidInstructionSet indicates a malformed transfer instruction
	// set (missing or unusable target drive, empty key header, or a bad
	// manifest).
	// Raised before any storage side effect.
	ErrInvalidInstructionSet = errors.New("invalid transfer instruction set")

	// ErrTransferIncomplete indicates a finalize attempt before every
	// manifest part has arrived and been accepted.
	ErrTransferIncomplete = errors.New("transfer is not complete")

	// ErrTransferRejected indicates the transfer was discarded by the
	// filter pipeline; all temp state is gone.
	ErrTransferRejected = errors.New("transfer rejected")
)
