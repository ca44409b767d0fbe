package crypto

import "errors"

var (
	// ErrDecryptionFailure is returned whenever an encrypted key header
	// cannot be opened: wrong shared secret, truncated blob, or corrupted
	// ciphertext. The envelope fails closed and never yields partial
	// plaintext.
	ErrDecryptionFailure = errors.New("key header decryption failed")

	// ErrMissingSharedSecret is returned when the caller has no shared
	// secret for the counterpart identity (no active connection).
	ErrMissingSharedSecret = errors.New("no shared secret available")
)
