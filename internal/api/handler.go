// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package api exposes the dashboard panels over HTTP: the GA panels,
// the Google Ads snapshot, the social panels, the flight-operations
// panels and the per-panel insight endpoint. Handlers go through a
// shared panel executor that caches results and degrades upstream
// failures to placeholder payloads.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/skyintel/skyintel/internal/cache"
	"github.com/skyintel/skyintel/internal/config"
	"github.com/skyintel/skyintel/internal/datasource"
	"github.com/skyintel/skyintel/internal/flights"
	"github.com/skyintel/skyintel/internal/insight"
	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/models"
)

// Handler carries the dependencies of every endpoint. Data source
// clients are nil when their credentials are not configured; the
// affected endpoints answer SOURCE_NOT_CONFIGURED instead.
type Handler struct {
	cfg      *config.Config
	cache    *cache.Cache
	ga       datasource.Querier
	ads      *datasource.AdsClient
	meta     *datasource.MetaClient
	insights *insight.Requester

	mu      sync.RWMutex
	dataset *flights.Dataset

	started time.Time
}

// New wires a handler. Any client may be nil.
func New(cfg *config.Config, c *cache.Cache, ga datasource.Querier, ads *datasource.AdsClient, meta *datasource.MetaClient, ins *insight.Requester) *Handler {
	return &Handler{
		cfg:      cfg,
		cache:    c,
		ga:       ga,
		ads:      ads,
		meta:     meta,
		insights: ins,
		started:  time.Now(),
	}
}

// LoadFlightsDir preloads the flight dataset from the configured
// directory, if any. Missing or unreadable files are logged and
// skipped; upload replaces the dataset at runtime.
func (h *Handler) LoadFlightsDir() {
	dir := h.cfg.Flights.Dir
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.With("flights").Warn().Err(err).Str("dir", dir).Msg("cannot read flights dir")
		return
	}
	files := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			logging.With("flights").Warn().Err(err).Str("file", e.Name()).Msg("skipping unreadable file")
			continue
		}
		files[e.Name()] = data
	}
	if len(files) == 0 {
		return
	}
	ds, err := flights.ParseAll(files)
	if err != nil {
		logging.With("flights").Error().Err(err).Msg("preloading flight data failed")
		return
	}
	h.setDataset(ds)
	logging.With("flights").Info().Int("flights", len(ds.Flights)).Msg("flight data preloaded")
}

func (h *Handler) setDataset(ds *flights.Dataset) {
	h.mu.Lock()
	h.dataset = ds
	h.mu.Unlock()
}

func (h *Handler) getDataset() *flights.Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dataset
}

// dateRange reads start/end query parameters, defaulting to the last
// 30 full days.
func dateRange(r *http.Request) (models.DateRange, error) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr == "" && endStr == "" {
		return models.LastNDays(time.Now(), 30), nil
	}
	dr := models.LastNDays(time.Now(), 30)
	if startStr != "" {
		start, err := datasource.ParseDate(startStr)
		if err != nil {
			return models.DateRange{}, errBadDate("start", startStr)
		}
		dr.Start = start
	}
	if endStr != "" {
		end, err := datasource.ParseDate(endStr)
		if err != nil {
			return models.DateRange{}, errBadDate("end", endStr)
		}
		dr.End = end
	}
	if dr.End.Before(dr.Start) {
		return models.DateRange{}, errRange(dr)
	}
	return dr, nil
}

// healthHandler answers liveness probes with basic process info.
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"sources": map[string]bool{
			"ga":      h.ga != nil,
			"ads":     h.ads != nil,
			"meta":    h.meta != nil,
			"openai":  h.insights.Configured(),
			"flights": h.getDataset() != nil,
		},
	}, false, 0)
}
