package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dotfed/idhost/models"
)

// ErrInvalidPeerToken is returned when a peer bearer token fails signature,
// issuer, audience, or expiry validation.
var ErrInvalidPeerToken = errors.New("invalid peer token")

// MintPeerToken creates a signed HMAC-SHA256 bearer token that authenticates
// sender toward recipient. The token is signed with the connection shared
// secret, so only the two ends of the connection can mint or verify it.
//
// Claims:
//   - Issuer   (iss): the configured issuer label of the sending host
//   - Subject  (sub): the sender identity
//   - Audience (aud): the recipient identity
//   - IssuedAt/ExpiresAt: now / now+duration
func MintPeerToken(issuer string, sender, recipient models.Identity, duration time.Duration, sharedSecret []byte) (string, error) {
	if issuer == "" || duration == 0 || len(sharedSecret) == 0 {
		return "", errors.New("invalid params for minting peer token")
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   string(sender.Normalize()),
		Audience:  jwt.ClaimStrings{string(recipient.Normalize())},
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("error occurred during signing peer token: %w", err)
	}

	return tokenString, nil
}

// PeerTokenSubject extracts the unverified subject (sender identity) from a
// peer bearer token. The receiving host uses it to look up the claimed
// sender's connection record, whose shared secret then verifies the token
// with [VerifyPeerToken]. A token whose claimed sender has no connection
// simply fails verification later — nothing is trusted at this step.
func PeerTokenSubject(tokenString string) (models.Identity, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &jwt.RegisteredClaims{})
	if err != nil {
		return "", ErrInvalidPeerToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidPeerToken
	}

	return models.Identity(subject).Normalize(), nil
}

// VerifyPeerToken validates tokenString against the shared secret of the
// claimed sender's connection and the local host identity as audience.
// Returns the verified sender identity.
func VerifyPeerToken(tokenString string, localIdentity models.Identity, sharedSecret []byte) (models.Identity, error) {
	if len(sharedSecret) == 0 {
		return "", ErrInvalidPeerToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidPeerToken
		}
		return sharedSecret, nil
	}, jwt.WithAudience(string(localIdentity.Normalize())))
	if err != nil {
		return "", ErrInvalidPeerToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidPeerToken
	}

	return models.Identity(subject).Normalize(), nil
}
