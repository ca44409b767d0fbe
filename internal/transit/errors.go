package transit

import "errors"

var (
	// ErrNoRecipients indicates a send request that names nobody.
	ErrNoRecipients = errors.New("transfer has no recipients")

	// ErrSelfRecipient indicates the local identity listed among the
	// recipients of its own transfer.
	ErrSelfRecipient = errors.New("cannot address a transfer to the local identity")

	// ErrMissingKeyHeader indicates a file stored without a sealed content
	// key. Such a file can never be re-wrapped for a recipient.
	ErrMissingKeyHeader = errors.New("file has no encrypted key header")

	// ErrMissingGlobalTransitID indicates a remote delete request for a file
	// that was sent without a transfer-wide id, so recipients cannot resolve
	// which committed file to remove.
	ErrMissingGlobalTransitID = errors.New("file has no global transit id")
)
