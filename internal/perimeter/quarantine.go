package perimeter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dotfed/idhost/internal/drive"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/models"
)

// quarantineRecord pins one finalized-but-quarantined transfer so its
// retained temp area stays addressable for review after the admission
// state is gone.
type quarantineRecord struct {
	sender        models.Identity
	tempFile      models.FileRef
	targetDrive   string
	parts         map[models.PartKind]models.FilterAction
	quarantinedAt time.Time
}

// quarantineLedger is the volatile index of quarantined transfers, keyed by
// the correlation id the sender already knows.
type quarantineLedger struct {
	mu      sync.RWMutex
	records map[uuid.UUID]quarantineRecord
}

func newQuarantineLedger() *quarantineLedger {
	return &quarantineLedger{
		records: make(map[uuid.UUID]quarantineRecord),
	}
}

func (l *quarantineLedger) add(state *IncomingTransferState) {
	snap := state.Snapshot()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[state.CorrelationID] = quarantineRecord{
		sender:        state.Sender,
		tempFile:      state.TempFile,
		targetDrive:   state.Instructions.TargetDrive,
		parts:         snap.Parts,
		quarantinedAt: time.Now(),
	}
}

func (l *quarantineLedger) get(id uuid.UUID) (quarantineRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[id]
	return rec, ok
}

func (l *quarantineLedger) remove(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, id)
}

// QuarantinedTransfers lists every transfer held back for manual review,
// oldest first.
func (s *Service) QuarantinedTransfers() []models.QuarantinedTransferSnapshot {
	s.quarantine.mu.RLock()
	out := make([]models.QuarantinedTransferSnapshot, 0, len(s.quarantine.records))
	for id, rec := range s.quarantine.records {
		parts := make(map[models.PartKind]models.FilterAction, len(rec.parts))
		for kind, action := range rec.parts {
			parts[kind] = action
		}
		out = append(out, models.QuarantinedTransferSnapshot{
			CorrelationID: id,
			Sender:        rec.sender,
			TargetDrive:   rec.targetDrive,
			Parts:         parts,
			QuarantinedAt: rec.quarantinedAt,
		})
	}
	s.quarantine.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].QuarantinedAt.Before(out[j].QuarantinedAt)
	})
	return out
}

// ReadQuarantinedPart returns the retained bytes of one part of a
// quarantined transfer for review. Flagged parts are read from their
// quarantine copy; parts accepted before the cascade started are read
// as-is.
func (s *Service) ReadQuarantinedPart(ctx context.Context, id uuid.UUID, kind models.PartKind) ([]byte, error) {
	rec, ok := s.quarantine.get(id)
	if !ok {
		return nil, ErrUnknownTransfer
	}

	data, err := s.storage.ReadQuarantinedPart(ctx, rec.tempFile, kind)
	if err == drive.ErrFileNotFound {
		return s.storage.ReadTempPart(ctx, rec.tempFile, kind)
	}
	return data, err
}

// PurgeQuarantinedTransfer discards the retained content of one quarantined
// transfer after review. The flagged parts are removed first so their bytes
// are gone even if tearing down the rest of the temp area fails midway.
func (s *Service) PurgeQuarantinedTransfer(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	rec, ok := s.quarantine.get(id)
	if !ok {
		return ErrUnknownTransfer
	}

	if err := s.storage.PurgeQuarantine(ctx, rec.tempFile); err != nil {
		return err
	}
	if err := s.storage.DeleteTempFiles(ctx, rec.tempFile); err != nil {
		return err
	}

	s.quarantine.remove(id)

	log.Info().
		Str("correlation_id", id.String()).
		Str("sender", string(rec.sender)).
		Msg("quarantined transfer purged")
	return nil
}
