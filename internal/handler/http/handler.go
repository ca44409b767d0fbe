package http

import (
	"github.com/dotfed/idhost/internal/config"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/perimeter"
	"github.com/dotfed/idhost/internal/store"
	"github.com/dotfed/idhost/internal/transit"
	"github.com/dotfed/idhost/internal/workers"
)

type Handler struct {
	perimeter   *perimeter.Service
	transit     *transit.Service
	connections store.ConnectionRepository
	processor   *workers.OutboxProcessor

	cfg    config.Host
	logger *logger.Logger
}

func NewHandler(
	perimeterSvc *perimeter.Service,
	transitSvc *transit.Service,
	connections store.ConnectionRepository,
	processor *workers.OutboxProcessor,
	cfg config.Host,
	log *logger.Logger,
) *Handler {
	log.Info().Msg("http handler created")
	return &Handler{
		perimeter:   perimeterSvc,
		transit:     transitSvc,
		connections: connections,
		processor:   processor,
		cfg:         cfg,
		logger:      log,
	}
}
