// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Command server runs the SkyIntel dashboard backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/skyintel/skyintel/internal/api"
	"github.com/skyintel/skyintel/internal/cache"
	"github.com/skyintel/skyintel/internal/config"
	"github.com/skyintel/skyintel/internal/datasource"
	"github.com/skyintel/skyintel/internal/insight"
	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/supervisor"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.With("main").Fatal().Err(err).Msg("startup failed")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	log := logging.With("main")

	panelCache := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	defer panelCache.Stop()

	// Each data source is optional: a missing one leaves its endpoints
	// answering SOURCE_NOT_CONFIGURED instead of blocking startup.
	var ga datasource.Querier
	if client, err := datasource.NewGA4Client(cfg.GA); err == nil {
		ga = client
	} else if !errors.Is(err, datasource.ErrNotConfigured) {
		return fmt.Errorf("ga4 client: %w", err)
	} else {
		log.Warn().Msg("GA4 not configured, analytics panels disabled")
	}

	var ads *datasource.AdsClient
	if client, err := datasource.NewAdsClient(cfg.Ads, cache.NewLRU(cfg.Ads.GeoCacheSize)); err == nil {
		ads = client
	} else if !errors.Is(err, datasource.ErrNotConfigured) {
		return fmt.Errorf("ads client: %w", err)
	} else {
		log.Warn().Msg("Google Ads not configured, ads panels disabled")
	}

	var meta *datasource.MetaClient
	if client, err := datasource.NewMetaClient(cfg.Meta); err == nil {
		meta = client
	} else if !errors.Is(err, datasource.ErrNotConfigured) {
		return fmt.Errorf("meta client: %w", err)
	} else {
		log.Warn().Msg("Meta not configured, social panels disabled")
	}

	insights := insight.New(cfg.OpenAI)
	if !insights.Configured() {
		log.Warn().Msg("OpenAI not configured, insight generation disabled")
	}

	handler := api.New(cfg, panelCache, ga, ads, meta, insights)
	handler.LoadFlightsDir()

	tree := supervisor.NewTree()
	tree.AddAPIService(&supervisor.HTTPService{
		Server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      handler.Router(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("port", cfg.Server.Port).Msg("starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("shut down cleanly")
	return nil
}
