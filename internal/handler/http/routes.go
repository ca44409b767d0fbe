package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// Every route runs behind peerAuth; it never rejects, it only decides
	// which tier the caller acts at. ACL evaluation happens per file.
	router.Group(func(r chi.Router) {
		r.Use(h.peerAuth)

		r.Post("/api/perimeter/transfer", h.initTransfer)
		r.Post("/api/perimeter/transfer/{id}/part/{kind}", h.uploadPart)
		r.Post("/api/perimeter/transfer/{id}/finalize", h.finalizeTransfer)
		r.Post("/api/perimeter/delete", h.deleteFile)
		r.Post("/api/perimeter/feed", h.acceptFeedUpdate)

		r.Post("/api/host/notify", h.acceptNotification)
		r.Post("/api/host/outbox/stoke", h.stokeOutbox)
		r.Get("/api/host/outbox", h.outboxStatus)
		r.Get("/api/host/transfers", h.incomingTransfers)
		r.Get("/api/host/quarantine", h.quarantinedTransfers)
		r.Get("/api/host/quarantine/{id}/part/{kind}", h.quarantinedPart)
		r.Post("/api/host/quarantine/{id}/purge", h.purgeQuarantined)
	})

	return router
}
