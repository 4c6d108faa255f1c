// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/skyintel/skyintel/internal/analytics"
	"github.com/skyintel/skyintel/internal/cache"
	"github.com/skyintel/skyintel/internal/datasource"
	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/metrics"
	"github.com/skyintel/skyintel/internal/models"
)

// panelPlaceholder is the degraded payload a panel renders when its
// upstream failed: no data, plus a visible error message. Other panels
// are unaffected because each is its own request.
type panelPlaceholder struct {
	NoData  bool   `json:"no_data"`
	Message string `json:"message"`
}

// insufficientPayload is rendered when a builder had too little data
// to work with; unlike an upstream failure it is not an error state.
type insufficientPayload struct {
	InsufficientData bool   `json:"insufficient_data"`
	Message          string `json:"message"`
}

// executePanel runs one panel query cache-first: a cache hit is served
// immediately, otherwise fn runs and its result is cached. Upstream
// failures degrade to a placeholder payload with HTTP 200; missing
// credentials block with SOURCE_NOT_CONFIGURED.
func (h *Handler) executePanel(w http.ResponseWriter, r *http.Request, panel string, params interface{}, fn func(ctx context.Context) (interface{}, error)) {
	key := cache.GenerateKey(panel, params)
	if v, ok := h.cache.Get(key); ok {
		metrics.CacheOps.WithLabelValues("hit").Inc()
		respondJSON(w, r, http.StatusOK, v, true, 0)
		return
	}
	metrics.CacheOps.WithLabelValues("miss").Inc()

	start := time.Now()
	data, err := fn(r.Context())
	elapsed := time.Since(start)

	switch {
	case err == nil:
		h.cache.Set(key, data)
		metrics.CacheOps.WithLabelValues("set").Inc()
		respondJSON(w, r, http.StatusOK, data, false, elapsed)

	case errors.Is(err, datasource.ErrNotConfigured):
		respondError(w, r, http.StatusServiceUnavailable,
			models.ErrCodeSourceNotConfigured, "the data source backing this panel is not configured")

	case errors.Is(err, analytics.ErrInsufficientData):
		respondJSON(w, r, http.StatusOK, insufficientPayload{
			InsufficientData: true,
			Message:          "not enough data in the selected range for this analysis",
		}, false, elapsed)

	default:
		var dsErr *datasource.DataSourceError
		if errors.As(err, &dsErr) {
			logging.FromContext(r.Context()).Error().
				Err(err).
				Str("panel", panel).
				Msg("panel query failed, degrading")
			respondJSON(w, r, http.StatusOK, panelPlaceholder{
				NoData:  true,
				Message: "data temporarily unavailable: " + dsErr.Error(),
			}, false, elapsed)
			return
		}
		logging.FromContext(r.Context()).Error().
			Err(err).
			Str("panel", panel).
			Msg("panel handler error")
		respondError(w, r, http.StatusInternalServerError,
			models.ErrCodeInternal, "internal error computing this panel")
	}
}
