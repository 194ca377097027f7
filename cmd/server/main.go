// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package main is the entry point for the Huddle server.
//
// Huddle is the agency back-office API: the sales pipeline CRM with its
// dashboards and exports, the internal forum, monthly employee reviews,
// user and role management, and proposal preview generation.
//
// Startup order: configuration (koanf, HUDDLE_ env prefix), structured
// logging (zerolog), Postgres pool (pgx) with schema bootstrap, the
// preview renderer and S3 store, then the HTTP server under a suture
// supervision tree. SIGINT and SIGTERM trigger graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/agencyops/huddle/internal/api"
	"github.com/agencyops/huddle/internal/auth"
	"github.com/agencyops/huddle/internal/config"
	"github.com/agencyops/huddle/internal/database"
	"github.com/agencyops/huddle/internal/logging"
	"github.com/agencyops/huddle/internal/preview"
	"github.com/agencyops/huddle/internal/supervisor"
	"github.com/agencyops/huddle/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("address", cfg.Server.Address()).
		Str("bucket", cfg.Storage.Bucket).
		Msg("starting huddle")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to apply schema")
	}
	logging.Info().Msg("database ready")

	store, err := preview.NewS3Store(ctx, &cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build object store")
	}
	previews := preview.NewService(preview.NewPDFRenderer(), store)

	handler := api.NewHandler(db, auth.NewAuthorizer(db), previews, cfg.Auth.SubjectClaim)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	logging.Info().Str("address", cfg.Server.Address()).Msg("listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped with error")
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop in time")
		}
	}
	logging.Info().Msg("shutdown complete")
}
