// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/models"
)

// respondJSON writes the standard success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, cached bool, queryTime time.Duration) {
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
			Cached:      cached,
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("encoding response failed")
	}
}

// respondError writes the standard error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{Code: code, Message: message},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("encoding error response failed")
	}
}

func errBadDate(param, value string) error {
	return fmt.Errorf("invalid %s date %q, want YYYY-MM-DD", param, value)
}

func errBadFloat(param, value string) error {
	return fmt.Errorf("invalid numeric %s value %q", param, value)
}

func errRange(dr models.DateRange) error {
	return fmt.Errorf("end date %s before start date %s",
		dr.End.Format("2006-01-02"), dr.Start.Format("2006-01-02"))
}
