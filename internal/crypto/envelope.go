// Package crypto implements the transfer encryption envelope: wrapping and
// unwrapping the per-file symmetric key header under a shared secret
// established by the sender/recipient connection.
//
// The envelope never exposes clear-text key material beyond the lifetime of
// a single wrap/unwrap call; callers own the returned [models.KeyHeader] and
// must Wipe it once the associated payload has been processed.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/dotfed/idhost/models"
)

const (
	// envelopeKeyLen is the derived AES-256 envelope key size.
	envelopeKeyLen = 32

	// headerIvLen is the random salt carried in the encrypted key header.
	headerIvLen = 16

	// envelopeInfo domain-separates envelope keys from any other use of the
	// connection shared secret.
	envelopeInfo = "idhost/transit/key-header/v1"
)

// NewKeyHeader generates a fresh random content key (16 bytes, AES-128) and
// IV for encrypting one file's payload. Returns an error if the OS CSPRNG
// read fails.
func NewKeyHeader() (models.KeyHeader, error) {
	key := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return models.KeyHeader{}, fmt.Errorf("generate content key: %w", err)
	}

	iv := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return models.KeyHeader{}, fmt.Errorf("generate content iv: %w", err)
	}

	return models.KeyHeader{AesKey: key, Iv: iv}, nil
}

// WrapKeyHeader seals kh under sharedSecret and returns the transfer key
// header safe to persist and send. A random 16-byte header IV salts the
// HKDF-SHA256 derivation of the envelope key, so wrapping the same key
// header twice never yields the same ciphertext or envelope key.
//
// The input key header is not consumed; the caller remains responsible for
// wiping it.
func WrapKeyHeader(kh models.KeyHeader, sharedSecret []byte) (models.EncryptedKeyHeader, error) {
	if len(sharedSecret) == 0 {
		return models.EncryptedKeyHeader{}, ErrMissingSharedSecret
	}

	headerIv := make([]byte, headerIvLen)
	if _, err := io.ReadFull(rand.Reader, headerIv); err != nil {
		return models.EncryptedKeyHeader{}, fmt.Errorf("generate header iv: %w", err)
	}

	envelopeKey, err := deriveEnvelopeKey(sharedSecret, headerIv)
	if err != nil {
		return models.EncryptedKeyHeader{}, err
	}
	defer wipe(envelopeKey)

	plaintext, err := json.Marshal(kh)
	if err != nil {
		return models.EncryptedKeyHeader{}, fmt.Errorf("marshal key header: %w", err)
	}
	defer wipe(plaintext)

	gcm, err := newGCM(envelopeKey)
	if err != nil {
		return models.EncryptedKeyHeader{}, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return models.EncryptedKeyHeader{}, fmt.Errorf("generate nonce: %w", err)
	}

	// blob = nonce || ciphertext, same framing on the unwrap side.
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	return models.EncryptedKeyHeader{
		Iv:   headerIv,
		Data: append(nonce, ciphertext...),
	}, nil
}

// UnwrapKeyHeader opens ekh with sharedSecret and returns the clear-text key
// header. It fails closed: a wrong secret, a truncated blob, or a corrupted
// ciphertext all yield [ErrDecryptionFailure] and never partial plaintext.
//
// The caller owns the returned key header and must Wipe it after the
// associated payload has been decrypted.
func UnwrapKeyHeader(ekh models.EncryptedKeyHeader, sharedSecret []byte) (models.KeyHeader, error) {
	if len(sharedSecret) == 0 {
		return models.KeyHeader{}, ErrMissingSharedSecret
	}
	if ekh.IsZero() || len(ekh.Iv) != headerIvLen {
		return models.KeyHeader{}, ErrDecryptionFailure
	}

	envelopeKey, err := deriveEnvelopeKey(sharedSecret, ekh.Iv)
	if err != nil {
		return models.KeyHeader{}, err
	}
	defer wipe(envelopeKey)

	gcm, err := newGCM(envelopeKey)
	if err != nil {
		return models.KeyHeader{}, err
	}

	nonceSize := gcm.NonceSize()
	if len(ekh.Data) < nonceSize {
		return models.KeyHeader{}, ErrDecryptionFailure
	}

	nonce, ciphertext := ekh.Data[:nonceSize], ekh.Data[nonceSize:]

	// An authentication-tag mismatch here almost always means the caller
	// supplied the wrong connection's shared secret.
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return models.KeyHeader{}, ErrDecryptionFailure
	}
	defer wipe(plaintext)

	var kh models.KeyHeader
	if err := json.Unmarshal(plaintext, &kh); err != nil {
		return models.KeyHeader{}, ErrDecryptionFailure
	}

	return kh, nil
}

// deriveEnvelopeKey derives the per-header AES-256 envelope key from the
// connection shared secret via HKDF-SHA256, salted by the header IV.
func deriveEnvelopeKey(sharedSecret, headerIv []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, sharedSecret, headerIv, []byte(envelopeInfo))

	key := make([]byte, envelopeKeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive envelope key: %w", err)
	}

	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
