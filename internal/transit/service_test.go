package transit

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dotfed/idhost/internal/crypto"
	"github.com/dotfed/idhost/internal/drive"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/mock"
	"github.com/dotfed/idhost/internal/peer"
	"github.com/dotfed/idhost/models"
)

type transitEnv struct {
	service     *Service
	storage     *mock.MockStorage
	outbox      *mock.MockOutboxRepository
	connections *mock.MockConnectionRepository
	client      *mock.MockClient
	masterKey   []byte
}

func newTransitEnv(t *testing.T) *transitEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	env := &transitEnv{
		storage:     mock.NewMockStorage(ctrl),
		outbox:      mock.NewMockOutboxRepository(ctrl),
		connections: mock.NewMockConnectionRepository(ctrl),
		client:      mock.NewMockClient(ctrl),
		masterKey:   bytes.Repeat([]byte{0x42}, 32),
	}
	env.service = NewService(
		"self.example.org",
		env.storage,
		env.outbox,
		env.connections,
		env.client,
		env.masterKey,
		10,
		logger.Nop(),
	)
	return env
}

// sealedHeader builds a committed file header whose key header is sealed
// under the test master key, the way local storage would hold it.
func (e *transitEnv) sealedHeader(t *testing.T, ref models.FileRef, gtid *uuid.UUID) (models.FileHeader, models.KeyHeader) {
	t.Helper()

	kh, err := crypto.NewKeyHeader()
	require.NoError(t, err)

	ekh, err := crypto.WrapKeyHeader(kh, e.masterKey)
	require.NoError(t, err)

	return models.FileHeader{
		Ref:                ref,
		Metadata:           models.FileMetadata{ContentType: "application/json"},
		Sender:             "self.example.org",
		GlobalTransitID:    gtid,
		EncryptedKeyHeader: ekh,
	}, kh
}

func activeConnection(identity models.Identity) models.Connection {
	return models.Connection{
		Identity:     identity,
		IsConnected:  true,
		Circles:      []string{"friends"},
		SharedSecret: bytes.Repeat([]byte{0x07}, 32),
	}
}

func TestService_SendFile_RecipientValidation(t *testing.T) {
	tests := []struct {
		name       string
		recipients []models.Identity
		wantErr    error
	}{
		{name: "no recipients", recipients: nil, wantErr: ErrNoRecipients},
		{name: "blank recipient", recipients: []models.Identity{"  "}, wantErr: ErrNoRecipients},
		{name: "self recipient", recipients: []models.Identity{"Self.Example.ORG"}, wantErr: ErrSelfRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTransitEnv(t)

			// Validation fails before any storage or outbox access.
			_, err := env.service.SendFile(context.Background(), models.FileRef{DriveID: "default", FileID: uuid.New()}, models.TransitOptions{
				Recipients: tt.recipients,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_SendFile_MissingKeyHeader(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}

	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(models.FileHeader{Ref: ref}, nil)

	_, err := env.service.SendFile(context.Background(), ref, models.TransitOptions{
		Recipients: []models.Identity{"alice.example.org"},
	})
	assert.ErrorIs(t, err, ErrMissingKeyHeader)
}

func TestService_SendFile_QueuedMintsGlobalTransitID(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}
	header, _ := env.sealedHeader(t, ref, nil)

	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(header, nil)

	var minted *uuid.UUID
	env.storage.EXPECT().
		UpdateFileHeader(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, updated models.FileHeader) error {
			require.NotNil(t, updated.GlobalTransitID)
			minted = updated.GlobalTransitID
			return nil
		})

	var enqueued []models.OutboxEntry
	env.outbox.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.OutboxEntry) (models.OutboxEntry, error) {
			enqueued = append(enqueued, entry)
			return entry, nil
		}).
		Times(2)

	statuses, err := env.service.SendFile(context.Background(), ref, models.TransitOptions{
		Recipients:         []models.Identity{"Alice.Example.ORG", "bob.example.org"},
		UseGlobalTransitID: true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[models.Identity]models.TransferStatus{
		"alice.example.org": models.TransferQueued,
		"bob.example.org":   models.TransferQueued,
	}, statuses)

	require.Len(t, enqueued, 2)
	for _, entry := range enqueued {
		assert.Equal(t, models.EntryFileTransfer, entry.Kind)
		assert.Equal(t, ref.FileID.String(), entry.FileRef)

		var job transferJob
		require.NoError(t, json.Unmarshal(entry.Payload, &job))
		assert.Equal(t, ref, job.FileRef)
		require.NotNil(t, job.GlobalTransitID)
		assert.Equal(t, *minted, *job.GlobalTransitID)
	}

	assert.Equal(t, map[models.Identity]models.TransferStatus{
		"alice.example.org": models.TransferQueued,
		"bob.example.org":   models.TransferQueued,
	}, env.service.RecipientStatuses(ref))
}

func TestService_SendFile_SendNow(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}
	gtid := uuid.New()
	header, kh := env.sealedHeader(t, ref, &gtid)
	defer kh.Wipe()

	alice := activeConnection("alice.example.org")
	bob := activeConnection("bob.example.org")

	// Once for the send itself, once per inline delivery attempt.
	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(header, nil).
		Times(3)
	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity("alice.example.org")).
		Return(alice, nil)
	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity("bob.example.org")).
		Return(bob, nil)

	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartPayload).
		DoAndReturn(func(context.Context, models.FileRef, models.PartKind) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte("payload-bytes"))), nil
		}).
		Times(2)
	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartThumbnail).
		Return(nil, drive.ErrFileNotFound).
		Times(2)

	// Alice's host accepts; the key header on the wire must be resealed
	// under her connection secret, not the local master key.
	env.client.EXPECT().
		SendParts(gomock.Any(), models.Identity("alice.example.org"), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Identity, instructions models.TransferInstructionSet, parts []peer.Part) (models.HostResponseCode, error) {
			assert.Equal(t, "default", instructions.TargetDrive)
			assert.Equal(t, models.Identity("self.example.org"), instructions.Sender)
			require.NotNil(t, instructions.GlobalTransitID)
			assert.Equal(t, gtid, *instructions.GlobalTransitID)
			assert.Equal(t, []models.PartKind{models.PartMetadata, models.PartPayload}, instructions.Manifest)

			unwrapped, err := crypto.UnwrapKeyHeader(instructions.EncryptedKeyHeader, alice.SharedSecret)
			require.NoError(t, err)
			assert.Equal(t, kh.AesKey, unwrapped.AesKey)
			unwrapped.Wipe()

			require.Len(t, parts, 2)
			assert.Equal(t, models.PartMetadata, parts[0].Kind)
			assert.Equal(t, models.PartPayload, parts[1].Kind)
			assert.Equal(t, []byte("payload-bytes"), parts[1].Data)

			return models.HostAccepted, nil
		})

	// Bob's host is down; the attempt parks in the outbox.
	env.client.EXPECT().
		SendParts(gomock.Any(), models.Identity("bob.example.org"), gomock.Any(), gomock.Any()).
		Return(models.HostResponseCode(""), peer.ErrRecipientUnreachable)
	env.outbox.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.OutboxEntry) (models.OutboxEntry, error) {
			assert.Equal(t, models.EntryFileTransfer, entry.Kind)
			assert.Equal(t, models.Identity("bob.example.org"), entry.Recipient)
			return entry, nil
		})

	statuses, err := env.service.SendFile(context.Background(), ref, models.TransitOptions{
		Recipients:         []models.Identity{"alice.example.org", "bob.example.org"},
		UseGlobalTransitID: true,
		SendNow:            true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[models.Identity]models.TransferStatus{
		"alice.example.org": models.TransferDelivered,
		"bob.example.org":   models.TransferPendingRetry,
	}, statuses)
}

func TestService_SendFile_SendNowRejections(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}
	gtid := uuid.New()
	header, _ := env.sealedHeader(t, ref, &gtid)

	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(header, nil).
		Times(3)

	// A revoked connection and a perimeter rejection are both terminal:
	// nothing is queued for either recipient.
	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity("revoked.example.org")).
		Return(models.Connection{Identity: "revoked.example.org", IsConnected: true, Revoked: true}, nil)

	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity("strict.example.org")).
		Return(activeConnection("strict.example.org"), nil)
	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartPayload).
		Return(io.NopCloser(bytes.NewReader([]byte("x"))), nil)
	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartThumbnail).
		Return(nil, drive.ErrFileNotFound)
	env.client.EXPECT().
		SendParts(gomock.Any(), models.Identity("strict.example.org"), gomock.Any(), gomock.Any()).
		Return(models.HostRejected, nil)

	statuses, err := env.service.SendFile(context.Background(), ref, models.TransitOptions{
		Recipients: []models.Identity{"revoked.example.org", "strict.example.org"},
		SendNow:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[models.Identity]models.TransferStatus{
		"revoked.example.org": models.TransferRecipientRejected,
		"strict.example.org":  models.TransferRecipientRejected,
	}, statuses)
}

func TestService_SendFile_FirstContactSealsUnderPublicKey(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}
	header, kh := env.sealedHeader(t, ref, nil)
	defer kh.Wipe()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	// No shared secret yet: the recipient only published a public key.
	fresh := models.Connection{
		Identity:    "fresh.example.org",
		IsConnected: true,
		PublicKey:   der,
	}

	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(header, nil).
		Times(2)
	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity("fresh.example.org")).
		Return(fresh, nil)
	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartPayload).
		Return(io.NopCloser(bytes.NewReader([]byte("hello"))), nil)
	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartThumbnail).
		Return(nil, drive.ErrFileNotFound)

	env.client.EXPECT().
		SendParts(gomock.Any(), models.Identity("fresh.example.org"), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Identity, instructions models.TransferInstructionSet, _ []peer.Part) (models.HostResponseCode, error) {
			// The asymmetric envelope carries no IV and opens only with
			// the recipient's private key.
			assert.Empty(t, instructions.EncryptedKeyHeader.Iv)
			unwrapped, err := crypto.UnwrapKeyHeaderPrivate(instructions.EncryptedKeyHeader, priv)
			require.NoError(t, err)
			assert.Equal(t, kh.AesKey, unwrapped.AesKey)
			unwrapped.Wipe()
			return models.HostAccepted, nil
		})

	statuses, err := env.service.SendFile(context.Background(), ref, models.TransitOptions{
		Recipients: []models.Identity{"fresh.example.org"},
		SendNow:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferDelivered, statuses["fresh.example.org"])
}

func TestService_SendFile_NoKeyMaterialForConnection(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}
	header, _ := env.sealedHeader(t, ref, nil)

	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(header, nil).
		Times(2)
	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity("bare.example.org")).
		Return(models.Connection{Identity: "bare.example.org", IsConnected: true}, nil)

	statuses, err := env.service.SendFile(context.Background(), ref, models.TransitOptions{
		Recipients: []models.Identity{"bare.example.org"},
		SendNow:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferRecipientRejected, statuses["bare.example.org"])
}

func TestService_ProcessOutboxBatch(t *testing.T) {
	env := newTransitEnv(t)
	marker := models.NewPopMarker()

	entries := []models.OutboxEntry{
		{ID: 1, Kind: models.EntryFeedDistribution, Recipient: "alice.example.org", Payload: []byte(`{"post":"hi"}`), Marker: marker},
		{ID: 2, Kind: models.EntryPushNotification, Recipient: "down.example.org", Payload: []byte(`{"n":1}`), Marker: marker},
		{ID: 3, Kind: models.EntryFileTransfer, Recipient: "bob.example.org", Payload: []byte("not json"), Marker: marker},
	}

	env.outbox.EXPECT().
		PopBatch(gomock.Any(), 10).
		Return(entries, marker, nil)

	// Delivered feed update commits its entry.
	env.client.EXPECT().
		SendFeedUpdate(gomock.Any(), models.Identity("alice.example.org"), entries[0].Payload).
		Return(nil)
	env.outbox.EXPECT().CommitEntry(gomock.Any(), marker, int64(1)).Return(nil)

	// Unreachable notification recipient sends the entry back to pending.
	env.client.EXPECT().
		SendPushNotification(gomock.Any(), models.Identity("down.example.org"), entries[1].Payload).
		Return(peer.ErrRecipientUnreachable)
	env.outbox.EXPECT().CancelEntry(gomock.Any(), marker, int64(2)).Return(nil)

	// The undecodable transfer job is poison and is committed away.
	env.outbox.EXPECT().CommitEntry(gomock.Any(), marker, int64(3)).Return(nil)

	require.NoError(t, env.service.ProcessOutboxBatch(context.Background()))
}

func TestService_ProcessOutboxBatch_EmptyQueue(t *testing.T) {
	env := newTransitEnv(t)

	env.outbox.EXPECT().
		PopBatch(gomock.Any(), 10).
		Return(nil, models.PopMarker{}, nil)

	assert.NoError(t, env.service.ProcessOutboxBatch(context.Background()))
}

func TestService_ProcessOutboxBatch_DeliversQueuedTransfer(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}
	gtid := uuid.New()
	header, _ := env.sealedHeader(t, ref, &gtid)
	marker := models.NewPopMarker()

	payload, err := json.Marshal(transferJob{FileRef: ref, GlobalTransitID: &gtid})
	require.NoError(t, err)

	env.outbox.EXPECT().
		PopBatch(gomock.Any(), 10).
		Return([]models.OutboxEntry{
			{ID: 7, Kind: models.EntryFileTransfer, Recipient: "alice.example.org", Payload: payload, Marker: marker},
		}, marker, nil)

	env.storage.EXPECT().GetFileHeader(gomock.Any(), ref).Return(header, nil)
	env.connections.EXPECT().
		GetConnection(gomock.Any(), models.Identity("alice.example.org")).
		Return(activeConnection("alice.example.org"), nil)
	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartPayload).
		Return(io.NopCloser(bytes.NewReader([]byte("x"))), nil)
	env.storage.EXPECT().
		ReadPart(gomock.Any(), ref, models.PartThumbnail).
		Return(nil, drive.ErrFileNotFound)
	env.client.EXPECT().
		SendParts(gomock.Any(), models.Identity("alice.example.org"), gomock.Any(), gomock.Any()).
		Return(models.HostAccepted, nil)
	env.outbox.EXPECT().CommitEntry(gomock.Any(), marker, int64(7)).Return(nil)

	require.NoError(t, env.service.ProcessOutboxBatch(context.Background()))
	assert.Equal(t, map[models.Identity]models.TransferStatus{
		"alice.example.org": models.TransferDelivered,
	}, env.service.RecipientStatuses(ref))
}

func TestService_SendDeleteFileRequest(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}
	gtid := uuid.New()

	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(models.FileHeader{Ref: ref, GlobalTransitID: &gtid}, nil)

	env.client.EXPECT().
		SendDeleteRequest(gomock.Any(), models.Identity("alice.example.org"), "default", gtid).
		Return(models.HostAccepted, nil)
	env.client.EXPECT().
		SendDeleteRequest(gomock.Any(), models.Identity("bob.example.org"), "default", gtid).
		Return(models.HostRejected, nil)

	statuses, err := env.service.SendDeleteFileRequest(context.Background(), ref, []models.Identity{"alice.example.org", "bob.example.org"})
	require.NoError(t, err)

	assert.Equal(t, map[models.Identity]models.TransferStatus{
		"alice.example.org": models.TransferDelivered,
		"bob.example.org":   models.TransferRecipientRejected,
	}, statuses)
}

func TestService_SendDeleteFileRequest_RequiresGlobalTransitID(t *testing.T) {
	env := newTransitEnv(t)
	ref := models.FileRef{DriveID: "default", FileID: uuid.New()}

	env.storage.EXPECT().
		GetFileHeader(gomock.Any(), ref).
		Return(models.FileHeader{Ref: ref}, nil)

	_, err := env.service.SendDeleteFileRequest(context.Background(), ref, []models.Identity{"alice.example.org"})
	assert.ErrorIs(t, err, ErrMissingGlobalTransitID)
}

func TestService_DistributeFeedUpdate(t *testing.T) {
	env := newTransitEnv(t)
	payload := []byte(`{"post":"hello"}`)

	var recipients []models.Identity
	env.outbox.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.OutboxEntry) (models.OutboxEntry, error) {
			assert.Equal(t, models.EntryFeedDistribution, entry.Kind)
			assert.Equal(t, payload, entry.Payload)
			recipients = append(recipients, entry.Recipient)
			return entry, nil
		}).
		Times(2)

	err := env.service.DistributeFeedUpdate(context.Background(), []models.Identity{"Alice.Example.ORG", "bob.example.org"}, payload)
	require.NoError(t, err)
	assert.Equal(t, []models.Identity{"alice.example.org", "bob.example.org"}, recipients)
}

func TestService_QueuePushNotification(t *testing.T) {
	env := newTransitEnv(t)

	env.outbox.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.OutboxEntry) (models.OutboxEntry, error) {
			assert.Equal(t, models.EntryPushNotification, entry.Kind)
			assert.Equal(t, models.Identity("alice.example.org"), entry.Recipient)
			return entry, nil
		})

	require.NoError(t, env.service.QueuePushNotification(context.Background(), "alice.example.org", []byte(`{"n":1}`)))

	assert.ErrorIs(t, env.service.QueuePushNotification(context.Background(), "  ", nil), ErrNoRecipients)
}

func TestService_PendingDeliveries(t *testing.T) {
	env := newTransitEnv(t)

	env.outbox.EXPECT().PendingCount(gomock.Any()).Return(4, nil)

	pending, err := env.service.PendingDeliveries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, pending)
}
