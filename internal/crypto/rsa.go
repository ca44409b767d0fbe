package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"fmt"

	"github.com/dotfed/idhost/models"
)

// ParsePublicKey decodes a recipient's RSA public key from the PKIX DER
// form the connection store keeps it in.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported public key type %T", key)
	}

	return pub, nil
}

// WrapKeyHeaderPublic seals kh under the recipient's RSA public key. It is
// the fallback used when no connection shared secret exists yet (first
// contact). RSA-OAEP with SHA-256 keeps the wrapped header bound to the
// recipient's private key only.
//
// The header IV is left empty to signal the asymmetric envelope on the
// unwrap side.
func WrapKeyHeaderPublic(kh models.KeyHeader, pub *rsa.PublicKey) (models.EncryptedKeyHeader, error) {
	if pub == nil {
		return models.EncryptedKeyHeader{}, ErrMissingSharedSecret
	}

	plaintext, err := json.Marshal(kh)
	if err != nil {
		return models.EncryptedKeyHeader{}, fmt.Errorf("marshal key header: %w", err)
	}
	defer wipe(plaintext)

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, []byte(envelopeInfo))
	if err != nil {
		return models.EncryptedKeyHeader{}, fmt.Errorf("rsa wrap key header: %w", err)
	}

	return models.EncryptedKeyHeader{Data: ciphertext}, nil
}

// UnwrapKeyHeaderPrivate opens an asymmetric envelope produced by
// [WrapKeyHeaderPublic]. Fails closed with [ErrDecryptionFailure] on any
// key or ciphertext mismatch.
func UnwrapKeyHeaderPrivate(ekh models.EncryptedKeyHeader, priv *rsa.PrivateKey) (models.KeyHeader, error) {
	if priv == nil {
		return models.KeyHeader{}, ErrMissingSharedSecret
	}
	if len(ekh.Data) == 0 || len(ekh.Iv) != 0 {
		return models.KeyHeader{}, ErrDecryptionFailure
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ekh.Data, []byte(envelopeInfo))
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
