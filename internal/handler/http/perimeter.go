package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/utils"
	"github.com/dotfed/idhost/models"
)

// maxPartSize caps the body of one uploaded part.
const maxPartSize = 64 << 20

func (h *Handler) initTransfer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var instructions models.TransferInstructionSet
	if err := json.NewDecoder(r.Body).Decode(&instructions); err != nil {
		log.Err(err).Str("func", "*Handler.initTransfer").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	// The verified caller identity wins over the sender claimed inside the
	// instruction set; an anonymous caller falls back to the claim, which
	// grants nothing beyond what the file's ACL allows anonymously.
	caller, _ := utils.CallerFromContext(r.Context())
	sender := caller.Identity
	if sender == "" {
		sender = instructions.Sender.Normalize()
	}

	id, err := h.perimeter.InitializeIncomingTransfer(r.Context(), sender, instructions)
	if err != nil {
		log.Err(err).Str("func", "*Handler.initTransfer").Msg("error initializing incoming transfer")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	h.writeJSON(w, r, map[string]any{"correlationId": id})
}

func (h *Handler) uploadPart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid correlation id", http.StatusBadRequest)
		return
	}
	kind := models.PartKind(chi.URLParam(r, "kind"))

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPartSize))
	if err != nil {
		log.Err(err).Str("func", "*Handler.uploadPart").Msg("error reading part body")
		http.Error(w, "error reading part body", http.StatusBadRequest)
		return
	}

	action, err := h.perimeter.ApplyPartFiltering(r.Context(), id, kind, data)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.uploadPart").
			Str("correlation_id", id.String()).
			Str("part", string(kind)).
			Msg("part refused")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	h.writeJSON(w, r, map[string]any{"filterAction": action.String()})
}

func (h *Handler) finalizeTransfer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid correlation id", http.StatusBadRequest)
		return
	}

	// The finalize body is deliberately ignored: the commit is gated on the
	// metadata part the filter pipeline admitted, never on what the sender
	// claims at finalize time.
	caller, _ := utils.CallerFromContext(r.Context())

	code, err := h.perimeter.FinalizeTransfer(r.Context(), id, caller)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.finalizeTransfer").
			Str("correlation_id", id.String()).
			Msg("error finalizing transfer")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	h.writeJSON(w, r, map[string]any{"code": code})
}

// deleteFileRequest mirrors the sender-side delete payload.
type deleteFileRequest struct {
	TargetDrive     string    `json:"targetDrive"`
	GlobalTransitID uuid.UUID `json:"globalTransitId"`
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req deleteFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.deleteFile").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	caller, _ := utils.CallerFromContext(r.Context())

	code, err := h.perimeter.AcceptDeleteRequest(r.Context(), caller, req.TargetDrive, req.GlobalTransitID)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.deleteFile").
			Str("gtid", req.GlobalTransitID.String()).
			Msg("error accepting delete request")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	h.writeJSON(w, r, map[string]any{"code": code})
}

// acceptFeedUpdate receives one feed item from a remote host. Items are
// acknowledged and logged; durable feed storage is owned by the app layer,
// not the transit perimeter.
func (h *Handler) acceptFeedUpdate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPartSize))
	if err != nil {
		http.Error(w, "error reading feed body", http.StatusBadRequest)
		return
	}

	caller, _ := utils.CallerFromContext(r.Context())
	log.Info().
		Str("sender", string(caller.Identity)).
		Int("size", len(data)).
		Msg("feed update received")

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromRequest(r).Err(err).Msg("error encoding response")
	}
}
