// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/skyintel/skyintel/internal/models"
	"github.com/skyintel/skyintel/internal/validation"
)

// insightPanels bounds the {panel} path value so the metric label set
// stays closed.
var insightPanels = map[string]struct{}{
	"overview":      {},
	"demography":    {},
	"geo":           {},
	"funnels":       {},
	"flow":          {},
	"cohort":        {},
	"temporal":      {},
	"correlations":  {},
	"what_if":       {},
	"ads":           {},
	"social":        {},
	"flights":       {},
	"flights_ops":   {},
	"flights_fleet": {},
}

type insightRequest struct {
	Instruction string `json:"instruction" validate:"required,min=3,max=2000"`
	Context     string `json:"context"     validate:"max=100000"`
}

type insightResponse struct {
	Panel string `json:"panel"`
	Text  string `json:"text"`
}

// insightHandler generates the prose analysis for one panel. The
// caller sends the rendered panel data as context plus the question to
// answer; the reply is always displayable text, with model failures
// already folded into a fallback sentence by the requester.
func (h *Handler) insightHandler(w http.ResponseWriter, r *http.Request) {
	if !h.insights.Configured() {
		respondError(w, r, http.StatusServiceUnavailable,
			models.ErrCodeSourceNotConfigured, "insight generation is not configured")
		return
	}

	panel := chi.URLParam(r, "panel")
	if _, ok := insightPanels[panel]; !ok {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound,
			"unknown insight panel "+panel)
		return
	}

	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
			"invalid JSON body: "+err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}

	text := h.insights.Request(r.Context(), panel, req.Instruction, req.Context)
	respondJSON(w, r, http.StatusOK, insightResponse{Panel: panel, Text: text}, false, 0)
}
