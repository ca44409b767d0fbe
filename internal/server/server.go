package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/dotfed/idhost/internal/config"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/workers"
)

type server struct {
	httpServer *httpServer
	background *workers.Workers
	logger     *logger.Logger
}

// NewServer wires the HTTP transport and the background workers into one
// runnable unit. The workers share the server's lifetime: they start when
// the server starts and stop on the same shutdown signal.
func NewServer(handler http.Handler, background *workers.Workers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := new(server)

	if cfg.HTTPAddress != "" {
		servers.httpServer = newHTTPServer(handler, cfg, logger)
	}

	if servers.httpServer == nil {
		return nil, errNoServersAreCreated
	}

	servers.background = background
	servers.logger = logger

	return servers, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.logger.Info().Msgf("Error running server: %v \n", err)
	}
}

func (s *server) Shutdown() {
	if s.httpServer != nil {
		s.httpServer.Shutdown()
	}
}

func (s *server) run() error {
	if s.httpServer == nil {
		return errNoServersAreCreated
	}

	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()

		s.Shutdown()

		close(idleConnectionsClosed)
	}()

	if s.background != nil {
		s.logger.Info().Msg("Launching background workers")
		s.background.Run(ctx)
	}

	s.logger.Info().Msg("Launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")

	return nil
}
