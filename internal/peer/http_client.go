// Package peer implements the HTTP client used to reach remote identity
// hosts: multi-part transfer delivery, remote delete requests, and outbox
// stoking. Requests are authenticated with bearer tokens minted from the
// connection shared secret; a recipient without a valid token sees the
// caller as anonymous.
package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/store"
	"github.com/dotfed/idhost/internal/utils"
	"github.com/dotfed/idhost/models"
)

// ClientConfig carries the local end of the peer protocol.
type ClientConfig struct {
	// LocalIdentity is the sender identity stamped into every token.
	LocalIdentity models.Identity

	// TokenIssuer and TokenDuration parameterize minted bearer tokens.
	TokenIssuer   string
	TokenDuration time.Duration

	// Timeout bounds one request to a remote host.
	Timeout time.Duration

	// Scheme is the URL scheme used to reach identities. Defaults to
	// "https"; tests override it to reach httptest servers.
	Scheme string
}

type httpClient struct {
	client      *resty.Client
	connections store.ConnectionRepository
	cfg         ClientConfig
	logger      *logger.Logger
}

// NewClient constructs the resty-backed peer [Client].
func NewClient(cfg ClientConfig, connections store.ConnectionRepository, log *logger.Logger) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}

	cli := resty.New().SetTimeout(cfg.Timeout)

	return &httpClient{
		client:      cli,
		connections: connections,
		cfg:         cfg,
		logger:      log,
	}
}

// transferInitResponse is the perimeter's answer to a transfer init.
type transferInitResponse struct {
	CorrelationID uuid.UUID `json:"correlationId"`
}

// partResponse is the perimeter's verdict for one uploaded part.
type partResponse struct {
	FilterAction string `json:"filterAction"`
}

// finalizeResponse is the perimeter's terminal verdict for a transfer.
type finalizeResponse struct {
	Code models.HostResponseCode `json:"code"`
}

// SendParts implements [Client]. The transfer is delivered as an init
// request carrying the instruction set, one upload per part, and a bodiless
// finalize request that closes the remote admission pipeline.
func (h *httpClient) SendParts(ctx context.Context, recipient models.Identity, instructions models.TransferInstructionSet, parts []Part) (models.HostResponseCode, error) {
	log := logger.FromContext(ctx)

	token, err := h.mintToken(ctx, recipient)
	if err != nil {
		return models.HostRejected, err
	}

	base := h.baseURL(recipient)

	resp, err := h.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(instructions).
		Post(base + "/api/perimeter/transfer")
	if err != nil {
		return models.HostRejected, fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.HostRejected, responseError(resp)
	}

	var initResp transferInitResponse
	if err := json.Unmarshal(resp.Body(), &initResp); err != nil {
		return models.HostRejected, fmt.Errorf("decode transfer init response: %w", err)
	}

	for _, part := range parts {
		resp, err := h.request(ctx, token).
			SetHeader("Content-Type", "application/octet-stream").
			SetBody(part.Data).
			Post(fmt.Sprintf("%s/api/perimeter/transfer/%s/part/%s", base, initResp.CorrelationID, part.Kind))
		if err != nil {
			return models.HostRejected, fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return models.HostRejected, responseError(resp)
		}

		var pr partResponse
		if err := json.Unmarshal(resp.Body(), &pr); err != nil {
			return models.HostRejected, fmt.Errorf("decode part response: %w", err)
		}
		log.Debug().
			Str("recipient", string(recipient)).
			Str("part", string(part.Kind)).
			Str("action", pr.FilterAction).
			Msg("part delivered")
	}

	// Finalize carries no body: the recipient gates the commit on the
	// metadata part its own filter pipeline admitted.
	resp, err = h.request(ctx, token).
		Post(fmt.Sprintf("%s/api/perimeter/transfer/%s/finalize", base, initResp.CorrelationID))
	if err != nil {
		return models.HostRejected, fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.HostRejected, responseError(resp)
	}

	var fin finalizeResponse
	if err := json.Unmarshal(resp.Body(), &fin); err != nil {
		return models.HostRejected, fmt.Errorf("decode finalize response: %w", err)
	}

	return fin.Code, nil
}

// deleteRequest asks a perimeter to delete a transited file.
type deleteRequest struct {
	TargetDrive     string    `json:"targetDrive"`
	GlobalTransitID uuid.UUID `json:"globalTransitId"`
}

// SendDeleteRequest implements [Client].
func (h *httpClient) SendDeleteRequest(ctx context.Context, recipient models.Identity, targetDrive string, gtid uuid.UUID) (models.HostResponseCode, error) {
	token, err := h.mintToken(ctx, recipient)
	if err != nil {
		return models.HostRejected, err
	}

	resp, err := h.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(deleteRequest{TargetDrive: targetDrive, GlobalTransitID: gtid}).
		Post(h.baseURL(recipient) + "/api/perimeter/delete")
	if err != nil {
		return models.HostRejected, fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return models.HostRejected, responseError(resp)
	}

	var fin finalizeResponse
	if err := json.Unmarshal(resp.Body(), &fin); err != nil {
		return models.HostRejected, fmt.Errorf("decode delete response: %w", err)
	}

	return fin.Code, nil
}

// SendFeedUpdate implements [Client].
func (h *httpClient) SendFeedUpdate(ctx context.Context, recipient models.Identity, payload []byte) error {
	return h.postBlob(ctx, recipient, "/api/perimeter/feed", payload)
}

// SendPushNotification implements [Client].
func (h *httpClient) SendPushNotification(ctx context.Context, recipient models.Identity, payload []byte) error {
	return h.postBlob(ctx, recipient, "/api/host/notify", payload)
}

func (h *httpClient) postBlob(ctx context.Context, recipient models.Identity, path string, payload []byte) error {
	token, err := h.mintToken(ctx, recipient)
	if err != nil {
		return err
	}

	resp, err := h.request(ctx, token).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(payload).
		Post(h.baseURL(recipient) + path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return responseError(resp)
	}

	return nil
}

// StokeOutbox implements [Client].
func (h *httpClient) StokeOutbox(ctx context.Context, identity models.Identity) error {
	token, err := h.mintToken(ctx, identity)
	if err != nil {
		return err
	}

	resp, err := h.request(ctx, token).
		Post(h.baseURL(identity) + "/api/host/outbox/stoke")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecipientUnreachable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return responseError(resp)
	}

	return nil
}

// request starts one request toward a remote host, attaching the bearer
// token when there is one. First-contact requests travel without a token
// and are seen as anonymous by the remote perimeter.
func (h *httpClient) request(ctx context.Context, token string) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// mintToken resolves the connection with recipient and mints a bearer token
// from its shared secret. An active connection that has not exchanged a
// secret yet (public-key first contact) yields an empty token.
func (h *httpClient) mintToken(ctx context.Context, recipient models.Identity) (string, error) {
	conn, err := h.connections.GetConnection(ctx, recipient)
	if err != nil {
		return "", fmt.Errorf("resolve connection for %s: %w", recipient, err)
	}
	if !conn.Active() {
		return "", ErrNoActiveConnection
	}
	if len(conn.SharedSecret) == 0 {
		return "", nil
	}

	return utils.MintPeerToken(h.cfg.TokenIssuer, h.cfg.LocalIdentity, recipient, h.cfg.TokenDuration, conn.SharedSecret)
}

func (h *httpClient) baseURL(identity models.Identity) string {
	return h.cfg.Scheme + "://" + string(identity.Normalize())
}

// responseError maps a non-200 perimeter answer onto the transit error
// taxonomy: 5xx is retryable (unreachable-equivalent), anything else is a
// terminal rejection by the recipient.
func responseError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrRecipientUnreachable, resp.StatusCode())
	}

	return fmt.Errorf("%w: status %d", ErrRecipientRejected, resp.StatusCode())
}
