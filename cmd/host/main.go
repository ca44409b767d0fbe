package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dotfed/idhost/internal/acl"
	"github.com/dotfed/idhost/internal/config"
	"github.com/dotfed/idhost/internal/drive"
	handlerhttp "github.com/dotfed/idhost/internal/handler/http"
	"github.com/dotfed/idhost/internal/logger"
	"github.com/dotfed/idhost/internal/peer"
	"github.com/dotfed/idhost/internal/perimeter"
	"github.com/dotfed/idhost/internal/server"
	"github.com/dotfed/idhost/internal/store"
	"github.com/dotfed/idhost/internal/transit"
	"github.com/dotfed/idhost/internal/workers"
	"github.com/dotfed/idhost/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("idhost")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	masterKey, err := base64.StdEncoding.DecodeString(cfg.Host.MasterKey)
	if err != nil || len(masterKey) == 0 {
		log.Fatal().Err(err).Msg("invalid master key")
	}

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	driveStorage, err := drive.NewStorage(cfg.Storage.Drive, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating drive storage")
	}

	localIdentity := models.Identity(cfg.Host.Identity).Normalize()

	gate := acl.NewGate(storages.Connections, log)
	filters := perimeter.NewPipeline(
		perimeter.EmptyPartFilter{},
		perimeter.PartSizeFilter{MaxBytes: 64 << 20},
	)
	perimeterSvc := perimeter.NewService(driveStorage, gate, filters, log)

	client := peer.NewClient(peer.ClientConfig{
		LocalIdentity: localIdentity,
		TokenIssuer:   cfg.Host.TokenIssuer,
		TokenDuration: cfg.Host.TokenDuration,
	}, storages.Connections, log)

	transitSvc := transit.NewService(
		localIdentity,
		driveStorage,
		storages.Outbox,
		storages.Connections,
		client,
		masterKey,
		cfg.Workers.OutboxBatchSize,
		log,
	)

	processor := workers.NewOutboxProcessor(transitSvc, cfg.Workers.OutboxInterval, log)
	sweeper := workers.NewStateSweeper(perimeterSvc, cfg.Workers.SweepInterval, cfg.Workers.SweepIdleAfter, log)
	background := workers.NewWorkers(processor, sweeper)

	handler := handlerhttp.NewHandler(perimeterSvc, transitSvc, storages.Connections, processor, cfg.Host, log)

	srv, err := server.NewServer(handler.Init(), background, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
