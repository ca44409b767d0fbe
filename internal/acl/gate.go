// Package acl implements the access-control gate that decides whether a
// caller may read or write a resource guarded by an
// [models.AccessControlList].
//
// Evaluation is a pure function over the caller, the ACL, and a
// connection-store lookup; it has no side effects and is safe to call from
// both the local-access path and the peer-admission path.
package acl

import (
	"context"

	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/models"
)

//go:generate mockgen -source=gate.go -destination=../mock/acl_mock.go -package=mock

// ConnectionLookup is the slice of the connection store the gate needs to
// evaluate the Connected tier: whether the caller holds an active,
// non-revoked connection with the resource owner.
type ConnectionLookup interface {
	GetConnection(ctx context.Context, identity models.Identity) (models.Connection, error)
}

// Decision is the result of one ACL evaluation. Callers branch on
// Authorized instead of catching errors; AuthorizeOrFail converts a denial
// into [ErrPermissionDenied] for paths that must abort.
type Decision struct {
	Authorized bool

	// Reason is a short machine-readable denial cause, empty when
	// authorized. It is for logs and diagnostics only and must never be
	// surfaced to remote callers (no resource existence leaked).
	Reason string
}

func authorized() Decision {
	return Decision{Authorized: true}
}

func denied(reason string) Decision {
	return Decision{Reason: reason}
}

// Gate evaluates ACLs against callers.
type Gate struct {
	connections ConnectionLookup
	logger      *logger.Logger
}

// NewGate constructs a Gate backed by the given connection lookup.
func NewGate(connections ConnectionLookup, logger *logger.Logger) *Gate {
	return &Gate{
		connections: connections,
		logger:      logger,
	}
}

// Authorize evaluates acl against caller.
//
// Rules, in order:
//  1. Owner or System caller — always authorized.
//  2. Missing ACL — never authorized (fail closed).
//  3. Identity allow-list and required circles are ORed: naming the caller
//     explicitly or sharing one required circle authorizes at any tier at or
//     above Authenticated. When either list is non-empty and neither
//     matches, the caller is denied regardless of tier.
//  4. Otherwise by tier: Anonymous always passes; Authenticated requires
//     caller tier >= Authenticated; Connected requires an active,
//     non-revoked connection with the caller's identity.
func (g *Gate) Authorize(ctx context.Context, caller models.Caller, acl *models.AccessControlList) Decision {
	if caller.IsOwnerOrSystem() {
		return authorized()
	}

	if acl == nil {
		return denied("no acl attached")
	}

	if len(acl.RequiredCircles) > 0 || len(acl.RequiredIdentities) > 0 {
		if caller.Tier < models.TierAuthenticated {
			return denied("group access requires authentication")
		}

		if identityListed(caller.Identity, acl.RequiredIdentities) {
			return authorized()
		}

		if circlesIntersect(caller.Circles, acl.RequiredCircles) {
			return authorized()
		}

		return denied("caller matches no required circle or identity")
	}

	switch acl.RequiredTier {
	case models.TierAnonymous:
		return authorized()

	case models.TierAuthenticated:
		if caller.Tier >= models.TierAuthenticated {
			return authorized()
		}
		return denied("authentication required")

	case models.TierConnected:
		return g.evaluateConnected(ctx, caller)

	default:
		// Owner/System tiers are reachable only via rule 1.
		return denied("tier reserved for local caller")
	}
}

// AuthorizeOrFail evaluates like [Gate.Authorize] but returns
// [ErrPermissionDenied] on denial, for call sites that must abort.
func (g *Gate) AuthorizeOrFail(ctx context.Context, caller models.Caller, acl *models.AccessControlList) error {
	decision := g.Authorize(ctx, caller, acl)
	if !decision.Authorized {
		logger.FromContext(ctx).Warn().
			Str("caller", string(caller.Identity)).
			Str("tier", caller.Tier.String()).
			Str("reason", decision.Reason).
			Msg("access denied")
		return ErrPermissionDenied
	}

	return nil
}

func (g *Gate) evaluateConnected(ctx context.Context, caller models.Caller) Decision {
	if !caller.Identity.IsValid() {
		return denied("connection required")
	}

	conn, err := g.connections.GetConnection(ctx, caller.Identity)
	if err != nil {
		// A store failure must not grant access.
		logger.FromContext(ctx).Err(err).
			Str("caller", string(caller.Identity)).
			Msg("connection lookup failed during acl evaluation")
		return denied("connection lookup failed")
	}

	if !conn.Active() {
		return denied("connection required")
	}

	return authorized()
}

func identityListed(identity models.Identity, list []models.Identity) bool {
	normalized := identity.Normalize()
	if normalized == "" {
		return false
	}

	for _, candidate := range list {
		if candidate.Normalize() == normalized {
			return true
		}
	}

	return false
}

func circlesIntersect(callerCircles, requiredCircles []string) bool {
	if len(callerCircles) == 0 || len(requiredCircles) == 0 {
		return false
	}

	required := make(map[string]struct{}, len(requiredCircles))
	for _, c := range requiredCircles {
		required[c] = struct{}{}
	}

	for _, c := range callerCircles {
		if _, ok := required[c]; ok {
			return true
		}
	}

	return false
}
