package models

import "strings"

// Identity is the domain name of an identity host (e.g. "alice.example.org").
// It is the canonical addressing unit of the peer protocol: every connection,
// circle membership and transfer recipient is keyed by it.
type Identity string

// Normalize lowercases and trims the identity so that lookups are
// case-insensitive, matching DNS semantics.
func (i Identity) Normalize() Identity {
	return Identity(strings.ToLower(strings.TrimSpace(string(i))))
}

// IsValid reports whether the identity is non-empty after normalization.
func (i Identity) IsValid() bool {
	return i.Normalize() != ""
}

// SecurityTier is the ladder of caller trust levels used by ACL evaluation.
// Higher values strictly dominate lower ones.
type SecurityTier int

const (
	TierAnonymous SecurityTier = iota
	TierAuthenticated
	TierConnected
	TierOwner
	TierSystem
)

// String implements fmt.Stringer for log output.
func (t SecurityTier) String() string {
	switch t {
	case TierAnonymous:
		return "anonymous"
	case TierAuthenticated:
		return "authenticated"
	case TierConnected:
		return "connected"
	case TierOwner:
		return "owner"
	case TierSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Caller describes the remote (or local) principal attempting an operation.
// It is built by the HTTP auth middleware from the peer bearer token, or by
// local code paths acting as Owner/System.
type Caller struct {
	Identity Identity
	Tier     SecurityTier

	// Circles the caller belongs to, as granted by the local owner.
	// Populated from the connection store for connected callers.
	Circles []string
}

// IsOwnerOrSystem reports whether the caller bypasses ACL evaluation entirely.
func (c Caller) IsOwnerOrSystem() bool {
	return c.Tier == TierOwner || c.Tier == TierSystem
}

// Connection is the trust relationship (ICR) between the local owner and a
// remote identity. The shared secret is the symmetric root used to encrypt
// transfer envelopes toward that identity.
type Connection struct {
	Identity    Identity
	IsConnected bool
	Revoked     bool
	Circles     []string

	// SharedSecret, once exchanged, is the symmetric root for envelopes and
	// bearer tokens toward this identity.
	SharedSecret []byte

	// PublicKey is the identity's RSA public key (PKIX DER). Before a shared
	// secret exists it is the only way to seal an envelope toward the peer.
	PublicKey []byte
}

// Active reports whether the connection may be used for transit and for
// satisfying the Connected security tier.
func (c Connection) Active() bool {
	return c.IsConnected && !c.Revoked
}
