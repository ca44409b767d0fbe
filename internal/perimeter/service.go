// Package perimeter implements the inbound boundary of the host: the
// admission state machine that receives multi-part transfers from remote
// identities, runs each part through the filter pipeline, and either
// promotes the transfer to committed drive storage or discards it whole.
package perimeter

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dotfed/idhost/internal/acl"
	"github.com/dotfed/idhost/internal/drive"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/models"
)

// Service drives the admission state machine. One instance serves all
// concurrent inbound transfers of the tenant.
type Service struct {
	cache      *stateCache
	quarantine *quarantineLedger
	storage    drive.Storage
	gate       *acl.Gate
	filters    Pipeline
	logger     *logger.Logger
}

// NewService wires the admission pipeline.
func NewService(storage drive.Storage, gate *acl.Gate, filters Pipeline, log *logger.Logger) *Service {
	return &Service{
		cache:      newStateCache(),
		quarantine: newQuarantineLedger(),
		storage:    storage,
		gate:       gate,
		filters:    filters,
		logger:     log,
	}
}

// InitializeIncomingTransfer starts a new inbound transfer for sender. The
// instruction set is validated and persisted first — it is required to
// interpret every later part — and a fresh correlation id plus temp area
// are allocated. Returns the correlation id the sender must use for all
// subsequent parts.
func (s *Service) InitializeIncomingTransfer(ctx context.Context, sender models.Identity, instructions models.TransferInstructionSet) (uuid.UUID, error) {
	log := logger.FromContext(ctx)

	if err := validateInstructions(instructions); err != nil {
		return uuid.Nil, err
	}

	ref, err := s.storage.CreateTempFile(ctx, instructions.TargetDrive)
	if err != nil {
		return uuid.Nil, err
	}

	state := newTransferState(sender, ref, instructions)

	// The instruction part is always accepted: without it nothing else can
	// be interpreted, and it was validated above.
	raw, err := encodeInstructions(instructions)
	if err != nil {
		_ = s.storage.DeleteTempFiles(ctx, ref)
		return uuid.Nil, err
	}
	if _, err := s.storage.WriteTempStream(ctx, ref, models.PartKeyHeader, bytes.NewReader(raw)); err != nil {
		_ = s.storage.DeleteTempFiles(ctx, ref)
		return uuid.Nil, err
	}
	state.RecordPart(models.PartKeyHeader, models.FilterAccept)

	s.cache.put(state)

	log.Info().
		Str("sender", string(sender)).
		Str("drive", instructions.TargetDrive).
		Str("correlation_id", state.CorrelationID.String()).
		Msg("incoming transfer initialized")

	return state.CorrelationID, nil
}

// ApplyPartFiltering classifies one arriving part and records the verdict.
// A kind the transfer's manifest does not announce is refused with
// ErrUnknownPartKind before any bytes are stored.
//
// Behavior per verdict:
//   - Accept: bytes are written to the temp area.
//   - Quarantine: bytes are written flagged; they are retained for manual
//     review, never silently dropped. Every subsequent part of the transfer
//     is quarantined as well.
//   - Reject: the whole transfer is discarded — all temp files (accepted
//     and quarantined alike) are deleted synchronously and the state is
//     destroyed before the call returns. Later calls for this correlation
//     id fail with ErrUnknownTransfer.
func (s *Service) ApplyPartFiltering(ctx context.Context, id uuid.UUID, kind models.PartKind, data []byte) (models.FilterAction, error) {
	log := logger.FromContext(ctx)

	if !models.KnownPartKind(kind) {
		return models.FilterReject, ErrUnknownPartKind
	}

	var verdict models.FilterAction

	err := s.cache.with(id, func(state *IncomingTransferState) (bool, error) {
		// Only parts the instruction set announced may arrive. In
		// particular the instruction part itself can never be re-uploaded.
		if !state.Instructions.Expects(kind) {
			return false, ErrUnknownPartKind
		}

		// A transfer that already holds quarantined content quarantines
		// everything that follows: the set must stay reviewable as a whole.
		if state.HasQuarantinedPart() {
			if _, err := s.storage.QuarantineTempStream(ctx, state.TempFile, kind, bytes.NewReader(data)); err != nil {
				return false, err
			}
			state.RecordPart(kind, models.FilterQuarantine)
			verdict = models.FilterQuarantine
			return false, nil
		}

		action, err := s.filters.Classify(ctx, FilterContext{
			Sender:      state.Sender,
			TargetDrive: state.Instructions.TargetDrive,
			PartKind:    kind,
		}, data)
		if err != nil {
			log.Err(err).Str("part", string(kind)).Msg("filter pipeline failed, rejecting part")
		}

		verdict = action

		switch action {
		case models.FilterAccept:
			if _, err := s.storage.WriteTempStream(ctx, state.TempFile, kind, bytes.NewReader(data)); err != nil {
				return false, err
			}
			state.RecordPart(kind, models.FilterAccept)
			return false, nil

		case models.FilterQuarantine:
			if _, err := s.storage.QuarantineTempStream(ctx, state.TempFile, kind, bytes.NewReader(data)); err != nil {
				return false, err
			}
			state.RecordPart(kind, models.FilterQuarantine)
			return false, nil

		default:
			// Reject: all-or-nothing. Cleanup is synchronous with the state
			// transition so no caller can observe a rejected-but-dirty
			// transfer.
			if err := s.storage.DeleteTempFiles(ctx, state.TempFile); err != nil {
				log.Err(err).Str("correlation_id", id.String()).Msg("temp cleanup failed after reject")
			}
			return true, nil
		}
	})
	if err != nil {
		return models.FilterReject, err
	}

	if verdict == models.FilterReject {
		return models.FilterReject, ErrTransferRejected
	}

	return verdict, nil
}

// FinalizeTransfer closes the admission pipeline for one transfer.
//
//   - Any quarantined part: the state is discarded but the temp area is
//     retained and recorded for review; the sender sees HostQuarantined.
//   - All manifest parts accepted: the metadata part the filter pipeline
//     admitted is re-read from the temp area, and the ACL gate evaluates
//     the remote caller against the ACL it declares; on authorization the
//     temp area is promoted to a committed file, otherwise the transfer is
//     treated as rejected (temp deleted, nothing committed).
//   - Missing parts: ErrTransferIncomplete; the state stays, the sender may
//     still upload the remainder.
//
// Only filtered bytes ever gate the commit: nothing the sender says at
// finalize time is consulted.
func (s *Service) FinalizeTransfer(ctx context.Context, id uuid.UUID, caller models.Caller) (models.HostResponseCode, error) {
	log := logger.FromContext(ctx)

	var code models.HostResponseCode

	err := s.cache.with(id, func(state *IncomingTransferState) (bool, error) {
		if state.HasQuarantinedPart() {
			s.quarantine.add(state)
			code = models.HostQuarantined
			log.Warn().
				Str("correlation_id", id.String()).
				Str("sender", string(state.Sender)).
				Msg("transfer quarantined, content retained for review")
			return true, nil
		}

		if !state.IsCompleteAndValid() {
			return false, ErrTransferIncomplete
		}

		raw, err := s.storage.ReadTempPart(ctx, state.TempFile, models.PartMetadata)
		if err != nil && err != drive.ErrFileNotFound {
			return false, err
		}

		// A transfer without a metadata part commits with the zero value,
		// whose nil ACL fails closed for any remote caller.
		var metadata models.FileMetadata
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &metadata); err != nil {
				// Admitted but undecodable metadata cannot gate a commit;
				// the transfer is rejected whole.
				if err := s.storage.DeleteTempFiles(ctx, state.TempFile); err != nil {
					log.Err(err).Str("correlation_id", id.String()).Msg("temp cleanup failed after undecodable metadata")
				}
				code = models.HostRejected
				log.Warn().
					Str("correlation_id", id.String()).
					Str("sender", string(state.Sender)).
					Msg("metadata part undecodable, transfer rejected")
				return true, nil
			}
		}

		decision := s.gate.Authorize(ctx, caller, metadata.Acl)
		if !decision.Authorized {
			// Denial is a rejection: nothing partial may survive.
			if err := s.storage.DeleteTempFiles(ctx, state.TempFile); err != nil {
				log.Err(err).Str("correlation_id", id.String()).Msg("temp cleanup failed after denial")
			}
			code = models.HostRejected
			log.Warn().
				Str("correlation_id", id.String()).
				Str("sender", string(state.Sender)).
				Str("reason", decision.Reason).
				Msg("transfer denied by acl gate")
			return true, nil
		}

		header := models.FileHeader{
			Ref:                state.TempFile,
			EncryptedKeyHeader: state.Instructions.EncryptedKeyHeader,
			Metadata:           metadata,
			Acl:                metadata.Acl,
			Sender:             state.Sender,
			GlobalTransitID:    state.Instructions.GlobalTransitID,
		}
		if err := s.storage.CommitFile(ctx, header); err != nil {
			return false, err
		}

		code = models.HostAccepted
		log.Info().
			Str("correlation_id", id.String()).
			Str("sender", string(state.Sender)).
			Msg("transfer committed")
		return true, nil
	})
	if err != nil {
		return models.HostRejected, err
	}

	return code, nil
}

// AcceptDeleteRequest handles a remote host asking to delete a file it
// previously transited here, addressed by the global transit id it minted.
// Idempotent: deleting a file that is already gone succeeds.
func (s *Service) AcceptDeleteRequest(ctx context.Context, caller models.Caller, targetDrive string, gtid uuid.UUID) (models.HostResponseCode, error) {
	header, err := s.storage.GetHeaderByGlobalTransitID(ctx, targetDrive, gtid)
	if err != nil {
		if err == drive.ErrFileNotFound {
			return models.HostAccepted, nil
		}
		return models.HostRejected, err
	}

	// Only the original sender may recall a transited file; anyone else
	// must pass the file's own ACL. A caller without an identity never
	// matches, even against a file committed with an empty sender.
	if !caller.Identity.IsValid() || caller.Identity.Normalize() != header.Sender.Normalize() {
		if err := s.gate.AuthorizeOrFail(ctx, caller, header.Acl); err != nil {
			return models.HostRejected, err
		}
	}

	if err := s.storage.DeleteFile(ctx, header.Ref); err != nil {
		return models.HostRejected, err
	}

	return models.HostAccepted, nil
}

// Snapshots exposes all in-progress inbound transfers for diagnostics.
func (s *Service) Snapshots() []models.IncomingTransferSnapshot {
	return s.cache.snapshots()
}

// SweepIdle discards transfers with no part activity since idleAfter ago,
// deleting their temp areas. Returns how many transfers were reclaimed.
// Run periodically so abandoned correlation ids cannot hold memory and
// disk forever.
func (s *Service) SweepIdle(ctx context.Context, idleAfter time.Duration) int {
	log := logger.FromContext(ctx)
	cutoff := time.Now().Add(-idleAfter)

	reclaimed := 0
	for _, id := range s.cache.idleStates(cutoff) {
		err := s.cache.with(id, func(state *IncomingTransferState) (bool, error) {
			// Re-check under the lock; a part may have just arrived.
			if !state.lastActivity.Before(cutoff) {
				return false, nil
			}

			if err := s.storage.DeleteTempFiles(ctx, state.TempFile); err != nil {
				log.Err(err).Str("correlation_id", id.String()).Msg("temp cleanup failed during sweep")
			}
			reclaimed++
			return true, nil
		})
		if err != nil && err != ErrUnknownTransfer {
			log.Err(err).Str("correlation_id", id.String()).Msg("sweep failed for transfer")
		}
	}

	return reclaimed
}

func validateInstructions(instructions models.TransferInstructionSet) error {
	if !drive.ValidDriveID(instructions.TargetDrive) {
		return ErrInvalidInstructionSet
	}
	if instructions.EncryptedKeyHeader.IsZero() {
		return ErrInvalidInstructionSet
	}
	if len(instructions.Manifest) == 0 {
		return ErrInvalidInstructionSet
	}
	for _, kind := range instructions.Manifest {
		if !models.KnownPartKind(kind) || kind == models.PartKeyHeader {
			return ErrInvalidInstructionSet
		}
	}

	return nil
}
