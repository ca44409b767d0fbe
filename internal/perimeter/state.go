package perimeter

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dotfed/idhost/models"
)

// IncomingTransferState tracks one in-progress inbound transfer. It is keyed
// by a server-generated correlation id (never trusted from the sender) and
// lives only in process memory: a transfer that does not finish within the
// process lifetime is simply re-sent by the peer's outbox.
type IncomingTransferState struct {
	CorrelationID uuid.UUID
	Sender        models.Identity
	TempFile      models.FileRef
	Instructions  models.TransferInstructionSet

	// parts records the filter verdict per received part kind.
	parts map[models.PartKind]models.FilterAction

	lastActivity time.Time
}

func newTransferState(sender models.Identity, tempFile models.FileRef, instructions models.TransferInstructionSet) *IncomingTransferState {
	return &IncomingTransferState{
		CorrelationID: uuid.New(),
		Sender:        sender,
		TempFile:      tempFile,
		Instructions:  instructions,
		parts:         make(map[models.PartKind]models.FilterAction, len(instructions.Manifest)),
		lastActivity:  time.Now(),
	}
}

// RecordPart stores the verdict for one part kind.
func (s *IncomingTransferState) RecordPart(kind models.PartKind, action models.FilterAction) {
	s.parts[kind] = action
	s.lastActivity = time.Now()
}

// HasQuarantinedPart reports whether any received part was quarantined.
func (s *IncomingTransferState) HasQuarantinedPart() bool {
	for _, action := range s.parts {
		if action == models.FilterQuarantine {
			return true
		}
	}
	return false
}

// IsCompleteAndValid reports whether every part the instruction set's
// manifest announces has arrived and been accepted.
func (s *IncomingTransferState) IsCompleteAndValid() bool {
	for _, kind := range s.Instructions.Manifest {
		if action, ok := s.parts[kind]; !ok || action != models.FilterAccept {
			return false
		}
	}
	return true
}

// Snapshot returns the diagnostics view of the state.
func (s *IncomingTransferState) Snapshot() models.IncomingTransferSnapshot {
	parts := make(map[models.PartKind]models.FilterAction, len(s.parts))
	for kind, action := range s.parts {
		parts[kind] = action
	}

	return models.IncomingTransferSnapshot{
		CorrelationID: s.CorrelationID,
		Sender:        s.Sender,
		TargetDrive:   s.Instructions.TargetDrive,
		Parts:         parts,
		StartedAt:     s.lastActivity,
	}
}

// stateCache is the volatile concurrent home of all in-progress inbound
// transfers. Each correlation id owns an independent mutex, so operations
// on one transfer serialize while different transfers proceed in parallel.
type stateCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*stateEntry
}

type stateEntry struct {
	mu    sync.Mutex
	state *IncomingTransferState
}

func newStateCache() *stateCache {
	return &stateCache{
		entries: make(map[uuid.UUID]*stateEntry),
	}
}

// put registers a freshly created state.
func (c *stateCache) put(state *IncomingTransferState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[state.CorrelationID] = &stateEntry{state: state}
}

// with runs fn while holding the per-id lock. fn returning remove=true
// deletes the entry before the lock is released, so no later caller can
// observe a half-discarded transfer.
func (c *stateCache) with(id uuid.UUID, fn func(state *IncomingTransferState) (remove bool, err error)) error {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return ErrUnknownTransfer
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// The entry may have been removed while we waited for its lock.
	if entry.state == nil {
		return ErrUnknownTransfer
	}

	remove, err := fn(entry.state)
	if remove {
		entry.state = nil
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
	}

	return err
}

// snapshots returns a diagnostics view of every in-progress transfer.
func (c *stateCache) snapshots() []models.IncomingTransferSnapshot {
	c.mu.RLock()
	entries := make([]*stateEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	c.mu.RUnlock()

	out := make([]models.IncomingTransferSnapshot, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.state != nil {
			out = append(out, entry.state.Snapshot())
		}
		entry.mu.Unlock()
	}

	return out
}

// idleStates collects transfers with no activity since the cutoff. The
// caller removes them via with(), which re-checks under the per-id lock.
func (c *stateCache) idleStates(cutoff time.Time) []uuid.UUID {
	// Collect entries first, then inspect each under its own lock, so the
	// cache lock is never held while waiting on a per-id lock.
	c.mu.RLock()
	type candidate struct {
		id    uuid.UUID
		entry *stateEntry
	}
	candidates := make([]candidate, 0, len(c.entries))
	for id, entry := range c.entries {
		candidates = append(candidates, candidate{id: id, entry: entry})
	}
	c.mu.RUnlock()

	var idle []uuid.UUID
	for _, c := range candidates {
		c.entry.mu.Lock()
		if c.entry.state != nil && c.entry.state.lastActivity.Before(cutoff) {
			idle = append(idle, c.id)
		}
		c.entry.mu.Unlock()
	}

	return idle
}
