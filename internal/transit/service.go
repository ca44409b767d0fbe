// Package transit implements the outbound half of peer file transfer:
// turning a committed local file into per-recipient encrypted transfers,
// delivering them inline or through the durable outbox, and resolving each
// delivery attempt against the recipient's perimeter verdict.
package transit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/dotfed/idhost/internal/crypto"
	"github.com/dotfed/idhost/internal/drive"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/peer"
	"github.com/dotfed/idhost/internal/store"
	"github.com/dotfed/idhost/models"
)

// Service turns local files into outbound transfers. One instance serves
// the whole tenant; per-recipient delivery state lives in the outbox (for
// pending work) and in the in-memory status book (for diagnostics).
type Service struct {
	localIdentity models.Identity
	storage       drive.Storage
	outbox        store.OutboxRepository
	connections   store.ConnectionRepository
	client        peer.Client

	// masterKey seals every locally stored file key header. Transit unwraps
	// with it and re-wraps under the recipient connection's shared secret.
	masterKey []byte

	batchSize int
	logger    *logger.Logger

	statuses statusBook
}

// NewService wires the outbound transit pipeline. batchSize bounds how many
// outbox entries one processing cycle claims.
func NewService(
	localIdentity models.Identity,
	storage drive.Storage,
	outbox store.OutboxRepository,
	connections store.ConnectionRepository,
	client peer.Client,
	masterKey []byte,
	batchSize int,
	log *logger.Logger,
) *Service {
	return &Service{
		localIdentity: localIdentity.Normalize(),
		storage:       storage,
		outbox:        outbox,
		connections:   connections,
		client:        client,
		masterKey:     masterKey,
		batchSize:     batchSize,
		logger:        log,
		statuses:      statusBook{entries: make(map[statusKey]models.TransferStatus)},
	}
}

// transferJob is the kind-specific outbox payload of a file transfer entry:
// everything deliverFileTransfer needs beyond the recipient itself.
type transferJob struct {
	FileRef         models.FileRef `json:"fileRef"`
	GlobalTransitID *uuid.UUID     `json:"globalTransitId,omitempty"`
}

// SendFile delivers the committed file at ref to every recipient in opts.
//
// With SendNow the delivery runs inline and the returned map carries the
// terminal per-recipient outcome of this attempt; transient failures are
// additionally queued so the outbox retries them. Without SendNow every
// recipient is queued and observes TransferQueued.
//
// When opts.UseGlobalTransitID is set and the file does not yet carry a
// transfer-wide id, one is minted and persisted on the header before any
// delivery, so every recipient sees the same id.
func (s *Service) SendFile(ctx context.Context, ref models.FileRef, opts models.TransitOptions) (map[models.Identity]models.TransferStatus, error) {
	log := logger.FromContext(ctx)

	recipients, err := s.validateRecipients(opts.Recipients)
	if err != nil {
		return nil, err
	}

	header, err := s.storage.GetFileHeader(ctx, ref)
	if err != nil {
		return nil, err
	}
	if header.EncryptedKeyHeader.IsZero() {
		return nil, ErrMissingKeyHeader
	}

	gtid := header.GlobalTransitID
	if opts.UseGlobalTransitID && gtid == nil {
		minted := uuid.New()
		gtid = &minted
		header.GlobalTransitID = gtid
		if err := s.storage.UpdateFileHeader(ctx, header); err != nil {
			return nil, fmt.Errorf("persist global transit id: %w", err)
		}
	}

	statuses := make(map[models.Identity]models.TransferStatus, len(recipients))
	for _, recipient := range recipients {
		var status models.TransferStatus
		if opts.SendNow {
			status = s.deliverFileTransfer(ctx, recipient, transferJob{FileRef: ref, GlobalTransitID: gtid})
			if status == models.TransferPendingRetry {
				if err := s.enqueueTransfer(ctx, recipient, ref, gtid); err != nil {
					return nil, err
				}
			}
		} else {
			if err := s.enqueueTransfer(ctx, recipient, ref, gtid); err != nil {
				return nil, err
			}
			status = models.TransferQueued
		}

		statuses[recipient] = status
		s.statuses.set(ref, recipient, status)
	}

	log.Info().
		Str("func", "*transit.Service.SendFile").
		Str("drive", ref.DriveID).
		Str("file_id", ref.FileID.String()).
		Int("recipients", len(recipients)).
		Bool("send_now", opts.SendNow).
		Msg("outbound transfer dispatched")

	return statuses, nil
}

// SendDeleteFileRequest asks every recipient to delete the file it committed
// under the transfer-wide id of ref. The file must have been sent with
// UseGlobalTransitID; without the id remote hosts cannot resolve the file.
func (s *Service) SendDeleteFileRequest(ctx context.Context, ref models.FileRef, recipients []models.Identity) (map[models.Identity]models.TransferStatus, error) {
	normalized, err := s.validateRecipients(recipients)
	if err != nil {
		return nil, err
	}

	header, err := s.storage.GetFileHeader(ctx, ref)
	if err != nil {
		return nil, err
	}
	if header.GlobalTransitID == nil {
		return nil, ErrMissingGlobalTransitID
	}

	statuses := make(map[models.Identity]models.TransferStatus, len(normalized))
	for _, recipient := range normalized {
		code, err := s.client.SendDeleteRequest(ctx, recipient, ref.DriveID, *header.GlobalTransitID)
		statuses[recipient] = resolveOutcome(code, err)
	}

	return statuses, nil
}

// DistributeFeedUpdate queues one feed item toward every follower. Feed
// distribution is always asynchronous; the outbox absorbs slow or offline
// followers.
func (s *Service) DistributeFeedUpdate(ctx context.Context, followers []models.Identity, payload []byte) error {
	normalized, err := s.validateRecipients(followers)
	if err != nil {
		return err
	}

	for _, follower := range normalized {
		entry := models.OutboxEntry{
			Kind:      models.EntryFeedDistribution,
			Recipient: follower,
			Payload:   payload,
		}
		if _, err := s.outbox.Enqueue(ctx, entry); err != nil {
			return fmt.Errorf("enqueue feed update for %s: %w", follower, err)
		}
	}

	return nil
}

// QueuePushNotification queues one notification blob toward a remote host.
func (s *Service) QueuePushNotification(ctx context.Context, recipient models.Identity, payload []byte) error {
	recipient = recipient.Normalize()
	if !recipient.IsValid() {
		return ErrNoRecipients
	}

	entry := models.OutboxEntry{
		Kind:      models.EntryPushNotification,
		Recipient: recipient,
		Payload:   payload,
	}
	if _, err := s.outbox.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("enqueue push notification for %s: %w", recipient, err)
	}

	return nil
}

// ProcessOutboxBatch claims one batch of runnable outbox entries, dispatches
// them concurrently by kind, and resolves each entry individually: terminal
// outcomes commit the entry, transient failures cancel it back to pending
// with a pushed-back run time. An empty queue is not an error.
func (s *Service) ProcessOutboxBatch(ctx context.Context) error {
	log := logger.FromContext(ctx)

	entries, marker, err := s.outbox.PopBatch(ctx, s.batchSize)
	if err != nil {
		return fmt.Errorf("pop outbox batch: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	log.Debug().
		Str("func", "*transit.Service.ProcessOutboxBatch").
		Str("marker", marker.String()).
		Int("entries", len(entries)).
		Msg("outbox batch claimed")

	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(entry models.OutboxEntry) {
			defer wg.Done()
			s.processEntry(ctx, entry)
		}(entry)
	}
	wg.Wait()

	return nil
}

// PendingDeliveries reports how many outbox entries are unclaimed and
// runnable, for the diagnostics surface.
func (s *Service) PendingDeliveries(ctx context.Context) (int, error) {
	return s.outbox.PendingCount(ctx)
}

// RecipientStatuses returns the last observed per-recipient status of the
// file at ref. Volatile; a restart forgets past outcomes but never pending
// work, which lives in the outbox.
func (s *Service) RecipientStatuses(ref models.FileRef) map[models.Identity]models.TransferStatus {
	return s.statuses.byRef(ref)
}

// processEntry runs one claimed entry to a terminal or retryable outcome.
// The switch on entry.Kind is exhaustive over the defined kinds; an unknown
// kind is a poison entry and is committed away so it cannot loop forever.
func (s *Service) processEntry(ctx context.Context, entry models.OutboxEntry) {
	log := logger.FromContext(ctx)

	var status models.TransferStatus
	switch entry.Kind {
	case models.EntryFileTransfer:
		var job transferJob
		if err := json.Unmarshal(entry.Payload, &job); err != nil {
			log.Error().Err(err).
				Int64("entry_id", entry.ID).
				Msg("undecodable transfer job, dropping entry")
			s.commitEntry(ctx, entry)
			return
		}
		status = s.deliverFileTransfer(ctx, entry.Recipient, job)
		s.statuses.set(job.FileRef, entry.Recipient, status)

	case models.EntryFeedDistribution:
		status = outcomeOf(s.client.SendFeedUpdate(ctx, entry.Recipient, entry.Payload))

	case models.EntryPushNotification:
		status = outcomeOf(s.client.SendPushNotification(ctx, entry.Recipient, entry.Payload))

	default:
		log.Error().
			Int64("entry_id", entry.ID).
			Int("kind", int(entry.Kind)).
			Msg("unknown outbox entry kind, dropping entry")
		s.commitEntry(ctx, entry)
		return
	}

	if status == models.TransferPendingRetry {
		s.cancelEntry(ctx, entry)
		return
	}
	s.commitEntry(ctx, entry)

	log.Debug().
		Str("func", "*transit.Service.processEntry").
		Int64("entry_id", entry.ID).
		Str("kind", entry.Kind.String()).
		Str("recipient", string(entry.Recipient)).
		Str("status", status.String()).
		Msg("outbox entry resolved")
}

// deliverFileTransfer performs one complete delivery attempt toward one
// recipient: unseal the file's content key from the local master key,
// re-seal it under the recipient connection's shared secret, assemble the
// instruction set and parts, and push them through the peer client.
func (s *Service) deliverFileTransfer(ctx context.Context, recipient models.Identity, job transferJob) models.TransferStatus {
	log := logger.FromContext(ctx)

	header, err := s.storage.GetFileHeader(ctx, job.FileRef)
	if err != nil {
		// The file disappeared after it was queued. Nothing left to send.
		log.Warn().Err(err).
			Str("file_id", job.FileRef.FileID.String()).
			Str("recipient", string(recipient)).
			Msg("queued file no longer exists, delivery abandoned")
		return models.TransferRecipientRejected
	}

	conn, err := s.connections.GetConnection(ctx, recipient)
	if err != nil || !conn.Active() {
		log.Warn().
			Str("recipient", string(recipient)).
			Msg("no active connection for delivery")
		return models.TransferRecipientRejected
	}

	kh, err := crypto.UnwrapKeyHeader(header.EncryptedKeyHeader, s.masterKey)
	if err != nil {
		log.Error().Err(err).
			Str("file_id", job.FileRef.FileID.String()).
			Msg("cannot unseal local key header")
		return models.TransferRecipientRejected
	}
	defer kh.Wipe()

	recipientEkh, err := sealForConnection(kh, conn)
	if err != nil {
		log.Error().Err(err).
			Str("recipient", string(recipient)).
			Msg("cannot seal key header for recipient")
		return models.TransferRecipientRejected
	}

	parts, manifest, err := s.collectParts(ctx, header)
	if err != nil {
		log.Error().Err(err).
			Str("file_id", job.FileRef.FileID.String()).
			Msg("cannot read file parts")
		return models.TransferPendingRetry
	}

	instructions := models.TransferInstructionSet{
		TargetDrive:        header.Ref.DriveID,
		GlobalTransitID:    job.GlobalTransitID,
		Sender:             s.localIdentity,
		EncryptedKeyHeader: recipientEkh,
		Manifest:           manifest,
	}

	code, err := s.client.SendParts(ctx, recipient, instructions, parts)
	return resolveOutcome(code, err)
}

// sealForConnection wraps the content key for one recipient: under the
// connection's shared secret when one has been exchanged, otherwise under
// the recipient's RSA public key (first contact). A connection carrying
// neither cannot receive an envelope at all.
func sealForConnection(kh models.KeyHeader, conn models.Connection) (models.EncryptedKeyHeader, error) {
	if len(conn.SharedSecret) > 0 {
		return crypto.WrapKeyHeader(kh, conn.SharedSecret)
	}

	if len(conn.PublicKey) > 0 {
		pub, err := crypto.ParsePublicKey(conn.PublicKey)
		if err != nil {
			return models.EncryptedKeyHeader{}, err
		}
		return crypto.WrapKeyHeaderPublic(kh, pub)
	}

	return models.EncryptedKeyHeader{}, crypto.ErrMissingSharedSecret
}

// collectParts loads the outbound parts of a committed file. Metadata is
// rebuilt from the header so the recipient receives exactly what the local
// host committed; payload is required, a thumbnail travels when present.
func (s *Service) collectParts(ctx context.Context, header models.FileHeader) ([]peer.Part, []models.PartKind, error) {
	metadata, err := json.Marshal(header.Metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metadata part: %w", err)
	}

	parts := []peer.Part{{Kind: models.PartMetadata, Data: metadata}}
	manifest := []models.PartKind{models.PartMetadata}

	payload, err := s.readPart(ctx, header.Ref, models.PartPayload)
	if err != nil {
		return nil, nil, fmt.Errorf("read payload part: %w", err)
	}
	parts = append(parts, peer.Part{Kind: models.PartPayload, Data: payload})
	manifest = append(manifest, models.PartPayload)

	thumbnail, err := s.readPart(ctx, header.Ref, models.PartThumbnail)
	switch {
	case err == nil:
		parts = append(parts, peer.Part{Kind: models.PartThumbnail, Data: thumbnail})
		manifest = append(manifest, models.PartThumbnail)
	case errors.Is(err, drive.ErrFileNotFound):
		// No thumbnail was stored; the manifest simply omits it.
	default:
		return nil, nil, fmt.Errorf("read thumbnail part: %w", err)
	}

	return parts, manifest, nil
}

func (s *Service) readPart(ctx context.Context, ref models.FileRef, kind models.PartKind) ([]byte, error) {
	rc, err := s.storage.ReadPart(ctx, ref, kind)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) enqueueTransfer(ctx context.Context, recipient models.Identity, ref models.FileRef, gtid *uuid.UUID) error {
	payload, err := json.Marshal(transferJob{FileRef: ref, GlobalTransitID: gtid})
	if err != nil {
		return fmt.Errorf("marshal transfer job: %w", err)
	}

	entry := models.OutboxEntry{
		Kind:      models.EntryFileTransfer,
		Recipient: recipient,
		FileRef:   ref.FileID.String(),
		Payload:   payload,
	}
	if _, err := s.outbox.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("enqueue transfer for %s: %w", recipient, err)
	}

	return nil
}

func (s *Service) commitEntry(ctx context.Context, entry models.OutboxEntry) {
	if err := s.outbox.CommitEntry(ctx, entry.Marker, entry.ID); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Int64("entry_id", entry.ID).
			Msg("cannot commit outbox entry")
	}
}

func (s *Service) cancelEntry(ctx context.Context, entry models.OutboxEntry) {
	if err := s.outbox.CancelEntry(ctx, entry.Marker, entry.ID); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Int64("entry_id", entry.ID).
			Msg("cannot cancel outbox entry")
	}
}

// validateRecipients normalizes and checks a recipient list: non-empty,
// every identity valid, and the local identity never among them.
func (s *Service) validateRecipients(recipients []models.Identity) ([]models.Identity, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	normalized := make([]models.Identity, 0, len(recipients))
	for _, r := range recipients {
		r = r.Normalize()
		if !r.IsValid() {
			return nil, ErrNoRecipients
		}
		if r == s.localIdentity {
			return nil, ErrSelfRecipient
		}
		normalized = append(normalized, r)
	}

	return normalized, nil
}

// resolveOutcome maps a perimeter response and transport error to the
// per-recipient status. Unreachable hosts retry; every perimeter verdict is
// terminal, only an explicit accept counts as delivered.
func resolveOutcome(code models.HostResponseCode, err error) models.TransferStatus {
	if err != nil {
		if errors.Is(err, peer.ErrRecipientUnreachable) {
			return models.TransferPendingRetry
		}
		return models.TransferRecipientRejected
	}

	if code == models.HostAccepted {
		return models.TransferDelivered
	}
	return models.TransferRecipientRejected
}

// outcomeOf maps a fire-and-forget delivery error to a status.
func outcomeOf(err error) models.TransferStatus {
	if err == nil {
		return models.TransferDelivered
	}
	if errors.Is(err, peer.ErrRecipientUnreachable) {
		return models.TransferPendingRetry
	}
	return models.TransferRecipientRejected
}

// statusKey identifies one (file, recipient) delivery in the status book.
type statusKey struct {
	fileID    uuid.UUID
	recipient models.Identity
}

// statusBook is the volatile per-recipient delivery status map backing the
// diagnostics surface.
type statusBook struct {
	mu      sync.RWMutex
	entries map[statusKey]models.TransferStatus
}

func (b *statusBook) set(ref models.FileRef, recipient models.Identity, status models.TransferStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[statusKey{fileID: ref.FileID, recipient: recipient}] = status
}

func (b *statusBook) byRef(ref models.FileRef) map[models.Identity]models.TransferStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[models.Identity]models.TransferStatus)
	for key, status := range b.entries {
		if key.fileID == ref.FileID {
			out[key.recipient] = status
		}
	}
	return out
}
