package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/utils"
	"github.com/dotfed/idhost/models"
)

// stokeOutbox lets a remote identity (or the local operator) request an
// immediate outbox processing cycle instead of waiting for the next tick.
func (h *Handler) stokeOutbox(w http.ResponseWriter, r *http.Request) {
	caller, _ := utils.CallerFromContext(r.Context())
	logger.FromRequest(r).Info().
		Str("caller", string(caller.Identity)).
		Msg("outbox stoked")

	h.processor.Stoke()
	w.WriteHeader(http.StatusOK)
}

// outboxStatus reports how many deliveries are pending, for diagnostics.
func (h *Handler) outboxStatus(w http.ResponseWriter, r *http.Request) {
	pending, err := h.transit.PendingDeliveries(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.outboxStatus").Msg("error counting pending deliveries")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	h.writeJSON(w, r, map[string]any{"pending": pending})
}

// incomingTransfers exposes the admission service's in-progress transfer
// snapshots, for diagnostics.
func (h *Handler) incomingTransfers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.perimeter.Snapshots())
}

// quarantinedTransfers lists transfers whose content is held back for
// manual review.
func (h *Handler) quarantinedTransfers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.perimeter.QuarantinedTransfers())
}

// quarantinedPart returns the retained bytes of one part of a quarantined
// transfer so the owner can inspect what was flagged.
func (h *Handler) quarantinedPart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid correlation id", http.StatusBadRequest)
		return
	}
	kind := models.PartKind(chi.URLParam(r, "kind"))

	data, err := h.perimeter.ReadQuarantinedPart(r.Context(), id, kind)
	if err != nil {
		logger.FromRequest(r).Err(err).
			Str("func", "*Handler.quarantinedPart").
			Str("correlation_id", id.String()).
			Str("part", string(kind)).
			Msg("error reading quarantined part")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(data); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing quarantined part")
	}
}

// purgeQuarantined discards a reviewed quarantined transfer, flagged bytes
// first.
func (h *Handler) purgeQuarantined(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid correlation id", http.StatusBadRequest)
		return
	}

	if err := h.perimeter.PurgeQuarantinedTransfer(r.Context(), id); err != nil {
		logger.FromRequest(r).Err(err).
			Str("func", "*Handler.purgeQuarantined").
			Str("correlation_id", id.String()).
			Msg("error purging quarantined transfer")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// acceptNotification receives one push notification blob from a remote
// host. Delivery to user agents is owned by the app layer.
func (h *Handler) acceptNotification(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPartSize))
	if err != nil {
		http.Error(w, "error reading notification body", http.StatusBadRequest)
		return
	}

	caller, _ := utils.CallerFromContext(r.Context())
	logger.FromRequest(r).Info().
		Str("sender", string(caller.Identity)).
		Int("size", len(data)).
		Msg("push notification received")

	w.WriteHeader(http.StatusOK)
}
