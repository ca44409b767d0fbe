package http

import (
	"net/http"
	"strings"

	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/utils"
	"github.com/dotfed/idhost/models"
)

// peerAuth resolves the caller behind a perimeter request.
//
// It inspects the "Authorization" header, extracts the bearer token, looks
// up the claimed sender's connection record by the token's unverified
// subject, and verifies the token against that connection's shared secret.
// The resulting [models.Caller] is stored in the request context under
// [utils.CallerCtxKey].
//
// Unlike conventional auth middleware it never rejects: a missing, invalid
// or unverifiable token downgrades the caller to the anonymous tier and the
// request proceeds. Whether an anonymous caller may do anything is decided
// later, per file, by ACL evaluation.
//
// Tier assignment:
//   - token verifies and the connection is active  — Connected, with the
//     circles the owner granted;
//   - token verifies but the connection is revoked — Authenticated;
//   - anything else                                — Anonymous.
func (h *Handler) peerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		caller := models.Caller{Tier: models.TierAnonymous}

		tokenString, err := getTokenFromAuthHeader(r.Header.Get("Authorization"))
		if err == nil {
			caller = h.resolveCaller(r, tokenString)
		} else {
			log.Debug().Msg("no peer token, caller is anonymous")
		}

		ctx := utils.WithCaller(r.Context(), caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveCaller verifies tokenString and builds the caller. Any failure on
// the way (unknown sender, bad signature, wrong audience) falls through to
// anonymous.
func (h *Handler) resolveCaller(r *http.Request, tokenString string) models.Caller {
	log := logger.FromRequest(r)
	anonymous := models.Caller{Tier: models.TierAnonymous}

	claimed, err := utils.PeerTokenSubject(tokenString)
	if err != nil {
		log.Debug().Err(err).Msg("unparsable peer token, caller is anonymous")
		return anonymous
	}

	conn, err := h.connections.GetConnection(r.Context(), claimed)
	if err != nil {
		log.Debug().Err(err).
			Str("claimed_sender", string(claimed)).
			Msg("no connection for claimed sender, caller is anonymous")
		return anonymous
	}

	localIdentity := models.Identity(h.cfg.Identity)
	sender, err := utils.VerifyPeerToken(tokenString, localIdentity, conn.SharedSecret)
	if err != nil {
		log.Debug().Err(err).
			Str("claimed_sender", string(claimed)).
			Msg("peer token failed verification, caller is anonymous")
		return anonymous
	}

	if !conn.Active() {
		return models.Caller{Identity: sender, Tier: models.TierAuthenticated}
	}

	return models.Caller{
		Identity: sender,
		Tier:     models.TierConnected,
		Circles:  conn.Circles,
	}
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value of the standard "<scheme> <token>"
// format.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
