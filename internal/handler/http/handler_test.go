package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dotfed/idhost/internal/acl"
	"github.com/dotfed/idhost/internal/config"
	"github.com/dotfed/idhost/internal/drive"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/mock"
	"github.com/dotfed/idhost/internal/perimeter"
	"github.com/dotfed/idhost/internal/transit"
	"github.com/dotfed/idhost/internal/utils"
	"github.com/dotfed/idhost/internal/workers"
	"github.com/dotfed/idhost/models"
)

const (
	localIdentity = "bob.example.org"
	remoteSender  = "alice.example.org"
)

type handlerEnv struct {
	server      *httptest.Server
	connections *mock.MockConnectionRepository
	outbox      *mock.MockOutboxRepository
	secret      []byte
}

// quarantineKindFilter quarantines one part kind and accepts the rest.
type quarantineKindFilter struct {
	kind models.PartKind
}

func (f quarantineKindFilter) Classify(_ context.Context, fctx perimeter.FilterContext, _ []byte) (models.FilterAction, error) {
	if fctx.PartKind == f.kind {
		return models.FilterQuarantine, nil
	}
	return models.FilterAccept, nil
}

func newHandlerEnv(t *testing.T, filters ...perimeter.Filter) *handlerEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	env := &handlerEnv{
		connections: mock.NewMockConnectionRepository(ctrl),
		outbox:      mock.NewMockOutboxRepository(ctrl),
		secret:      make([]byte, 32),
	}
	_, err := rand.Read(env.secret)
	require.NoError(t, err)

	log := logger.Nop()

	storage, err := drive.NewStorage(config.Drive{RootDir: t.TempDir()}, log)
	require.NoError(t, err)

	if len(filters) == 0 {
		filters = []perimeter.Filter{perimeter.EmptyPartFilter{}}
	}

	gate := acl.NewGate(env.connections, log)
	perimeterSvc := perimeter.NewService(storage, gate, perimeter.NewPipeline(filters...), log)

	transitSvc := transit.NewService(
		localIdentity,
		storage,
		env.outbox,
		env.connections,
		mock.NewMockClient(ctrl),
		bytes.Repeat([]byte{0x01}, 32),
		10,
		log,
	)

	processor := workers.NewOutboxProcessor(transitSvc, time.Hour, log)

	handler := NewHandler(perimeterSvc, transitSvc, env.connections, processor, config.Host{
		Identity:      localIdentity,
		TokenIssuer:   "idhost",
		TokenDuration: time.Minute,
	}, log)

	env.server = httptest.NewServer(handler.Init())
	t.Cleanup(env.server.Close)

	return env
}

// connectedSender registers an active connection for the remote sender and
// returns a bearer token its host would present.
func (e *handlerEnv) connectedSender(t *testing.T) string {
	t.Helper()

	e.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity(remoteSender)).
		Return(models.Connection{
			Identity:     remoteSender,
			IsConnected:  true,
			Circles:      []string{"friends"},
			SharedSecret: e.secret,
		}, nil).
		AnyTimes()

	token, err := utils.MintPeerToken("idhost", remoteSender, localIdentity, time.Minute, e.secret)
	require.NoError(t, err)
	return token
}

func (e *handlerEnv) post(t *testing.T, path, token string, body []byte) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, e.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func validInstructionsJSON(t *testing.T) []byte {
	t.Helper()

	iv := make([]byte, 16)
	_, err := rand.Read(iv)
	require.NoError(t, err)

	gtid := uuid.New()
	raw, err := json.Marshal(models.TransferInstructionSet{
		TargetDrive:        "default",
		GlobalTransitID:    &gtid,
		Sender:             remoteSender,
		EncryptedKeyHeader: models.EncryptedKeyHeader{Iv: iv, Data: []byte("sealed-key-header")},
		Manifest:           []models.PartKind{models.PartMetadata, models.PartPayload},
	})
	require.NoError(t, err)
	return raw
}

func TestHandler_InboundTransferFlow(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.connectedSender(t)

	resp, body := env.post(t, "/api/perimeter/transfer", token, validInstructionsJSON(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	correlationID := body["correlationId"].(string)
	require.NotEmpty(t, correlationID)

	// The uploaded metadata part gates the commit: circle members only,
	// and the caller is in "friends".
	metadata, err := json.Marshal(models.FileMetadata{
		ContentType: "text/plain",
		Acl: &models.AccessControlList{
			RequiredTier:    models.TierConnected,
			RequiredCircles: []string{"friends"},
		},
	})
	require.NoError(t, err)

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/metadata", token, metadata)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "accept", body["filterAction"])

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/payload", token, []byte("payload-bytes"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "accept", body["filterAction"])

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/finalize", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.HostAccepted), body["code"])

	// The finalized transfer left the diagnostics surface.
	getResp, err := env.server.Client().Get(env.server.URL + "/api/host/transfers")
	require.NoError(t, err)
	defer getResp.Body.Close()
	var snapshots []models.IncomingTransferSnapshot
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&snapshots))
	assert.Empty(t, snapshots)
}

func TestHandler_AnonymousCallerIsDowngraded(t *testing.T) {
	env := newHandlerEnv(t)

	// A garbage token does not reject the request; the caller is simply
	// anonymous and a tier-guarded ACL later refuses the commit.
	resp, body := env.post(t, "/api/perimeter/transfer", "garbage.token.value", validInstructionsJSON(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	correlationID := body["correlationId"].(string)

	metadata, err := json.Marshal(models.FileMetadata{
		Acl: &models.AccessControlList{RequiredTier: models.TierAuthenticated},
	})
	require.NoError(t, err)

	resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/metadata", "", metadata)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/payload", "", []byte("x"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/finalize", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.HostRejected), body["code"])
}

func TestHandler_RevokedConnectionIsAuthenticatedOnly(t *testing.T) {
	env := newHandlerEnv(t)

	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity(remoteSender)).
		Return(models.Connection{
			Identity:     remoteSender,
			IsConnected:  true,
			Revoked:      true,
			SharedSecret: env.secret,
		}, nil).
		AnyTimes()

	token, err := utils.MintPeerToken("idhost", remoteSender, localIdentity, time.Minute, env.secret)
	require.NoError(t, err)

	resp, body := env.post(t, "/api/perimeter/transfer", token, validInstructionsJSON(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	correlationID := body["correlationId"].(string)

	// Authenticated passes a tier-authenticated ACL but not a connected one.
	metadata, err := json.Marshal(models.FileMetadata{
		Acl: &models.AccessControlList{RequiredTier: models.TierConnected},
	})
	require.NoError(t, err)

	resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/metadata", token, metadata)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/payload", token, []byte("x"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/finalize", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.HostRejected), body["code"])
}

func TestHandler_FinalizeBodyCannotOverrideAdmittedMetadata(t *testing.T) {
	env := newHandlerEnv(t)

	resp, body := env.post(t, "/api/perimeter/transfer", "", validInstructionsJSON(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	correlationID := body["correlationId"].(string)

	guarded, err := json.Marshal(models.FileMetadata{
		Acl: &models.AccessControlList{RequiredTier: models.TierAuthenticated},
	})
	require.NoError(t, err)

	resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/metadata", "", guarded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/payload", "", []byte("x"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The anonymous sender presents a wide-open ACL at finalize time. Only
	// the metadata the filter pipeline admitted counts, so the commit is
	// still refused.
	open, err := json.Marshal(models.FileMetadata{
		ContentType: "text/plain",
		Acl:         &models.AccessControlList{RequiredTier: models.TierAnonymous},
	})
	require.NoError(t, err)

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/finalize", "", open)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.HostRejected), body["code"])
}

func TestHandler_QuarantineReview(t *testing.T) {
	env := newHandlerEnv(t, quarantineKindFilter{kind: models.PartPayload})
	token := env.connectedSender(t)

	resp, body := env.post(t, "/api/perimeter/transfer", token, validInstructionsJSON(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	correlationID := body["correlationId"].(string)

	resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/metadata", token, []byte(`{"contentType":"text/plain"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/payload", token, []byte("flagged-bytes"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "quarantine", body["filterAction"])

	resp, body = env.post(t, "/api/perimeter/transfer/"+correlationID+"/finalize", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, string(models.HostQuarantined), body["code"])

	// The transfer is listed for review.
	listResp, err := env.server.Client().Get(env.server.URL + "/api/host/quarantine")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var quarantined []models.QuarantinedTransferSnapshot
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&quarantined))
	require.Len(t, quarantined, 1)
	assert.Equal(t, correlationID, quarantined[0].CorrelationID.String())

	// The flagged bytes can be inspected.
	partResp, err := env.server.Client().Get(env.server.URL + "/api/host/quarantine/" + correlationID + "/part/payload")
	require.NoError(t, err)
	defer partResp.Body.Close()
	require.Equal(t, http.StatusOK, partResp.StatusCode)
	raw, err := io.ReadAll(partResp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("flagged-bytes"), raw)

	// Purge removes the content and the record.
	resp, _ = env.post(t, "/api/host/quarantine/"+correlationID+"/purge", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	partResp, err = env.server.Client().Get(env.server.URL + "/api/host/quarantine/" + correlationID + "/part/payload")
	require.NoError(t, err)
	defer partResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, partResp.StatusCode)
}

func TestHandler_ErrorMapping(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.connectedSender(t)

	t.Run("invalid instruction set", func(t *testing.T) {
		resp, _ := env.post(t, "/api/perimeter/transfer", token, []byte(`{"targetDrive":""}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("traversal target drive", func(t *testing.T) {
		raw, err := json.Marshal(models.TransferInstructionSet{
			TargetDrive:        "../outside/evil",
			Sender:             remoteSender,
			EncryptedKeyHeader: models.EncryptedKeyHeader{Iv: []byte("0123456789abcdef"), Data: []byte("sealed")},
			Manifest:           []models.PartKind{models.PartPayload},
		})
		require.NoError(t, err)

		resp, _ := env.post(t, "/api/perimeter/transfer", token, raw)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, _ := env.post(t, "/api/perimeter/transfer", token, []byte(`{not json`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown transfer", func(t *testing.T) {
		resp, _ := env.post(t, fmt.Sprintf("/api/perimeter/transfer/%s/part/payload", uuid.New()), token, []byte("x"))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad correlation id", func(t *testing.T) {
		resp, _ := env.post(t, "/api/perimeter/transfer/not-a-uuid/part/payload", token, []byte("x"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown part kind", func(t *testing.T) {
		resp, body := env.post(t, "/api/perimeter/transfer", token, validInstructionsJSON(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		correlationID := body["correlationId"].(string)

		resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/part/exe", token, []byte("x"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("incomplete finalize", func(t *testing.T) {
		resp, body := env.post(t, "/api/perimeter/transfer", token, validInstructionsJSON(t))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		correlationID := body["correlationId"].(string)

		resp, _ = env.post(t, "/api/perimeter/transfer/"+correlationID+"/finalize", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandler_DeleteUnknownFile(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.connectedSender(t)

	req, err := json.Marshal(map[string]any{
		"targetDrive":     "default",
		"globalTransitId": uuid.New(),
	})
	require.NoError(t, err)

	resp, body := env.post(t, "/api/perimeter/delete", token, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.HostAccepted), body["code"])
}

func TestHandler_OutboxStatus(t *testing.T) {
	env := newHandlerEnv(t)

	env.outbox.EXPECT().PendingCount(gomock.Any()).Return(3, nil)

	resp, err := env.server.Client().Get(env.server.URL + "/api/host/outbox")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(3), body["pending"])
}

func TestHandler_StokeOutbox(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.connectedSender(t)

	resp, _ := env.post(t, "/api/host/outbox/stoke", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_FeedAndNotify(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.connectedSender(t)

	resp, _ := env.post(t, "/api/perimeter/feed", token, []byte(`{"post":"hello"}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.post(t, "/api/host/notify", token, []byte(`{"n":1}`))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_TraceIDHeader(t *testing.T) {
	env := newHandlerEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/api/host/transfers")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}
