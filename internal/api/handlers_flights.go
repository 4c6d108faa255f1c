// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/skyintel/skyintel/internal/flights"
	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/models"
)

// maxUploadBytes bounds one multipart flight upload.
const maxUploadBytes = 32 << 20

// flightsUploadHandler replaces the flight dataset from a multipart
// upload of one CSV file per year. Any bad file rejects the whole
// upload, keeping the previous dataset in place.
func (h *Handler) flightsUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
			"expected a multipart upload of CSV files: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := make(map[string][]byte)
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
				respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
					"only .csv files are accepted, got "+fh.Filename)
				return
			}
			f, err := fh.Open()
			if err != nil {
				respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
					"cannot read uploaded file "+fh.Filename)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
					"cannot read uploaded file "+fh.Filename)
				return
			}
			files[fh.Filename] = data
		}
	}
	if len(files) == 0 {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
			"upload contained no files")
		return
	}

	ds, err := flights.ParseAll(files)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.setDataset(ds)
	logging.FromContext(r.Context()).Info().
		Int("files", len(files)).
		Int("flights", len(ds.Flights)).
		Msg("flight dataset replaced")
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"files":   len(files),
		"flights": len(ds.Flights),
	}, false, 0)
}

// requireDataset answers 404 when no flight data has been loaded yet.
func (h *Handler) requireDataset(w http.ResponseWriter, r *http.Request) *flights.Dataset {
	ds := h.getDataset()
	if ds == nil {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound,
			"no flight data loaded, upload CSV files first")
	}
	return ds
}

func (h *Handler) flightsKPIsHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.requireDataset(w, r)
	if ds == nil {
		return
	}
	respondJSON(w, r, http.StatusOK, ds.YearKPIs(), false, 0)
}

func (h *Handler) flightsMonthlyHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.requireDataset(w, r)
	if ds == nil {
		return
	}
	respondJSON(w, r, http.StatusOK, ds.Monthly(), false, 0)
}

func (h *Handler) flightsDestinationsHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.requireDataset(w, r)
	if ds == nil {
		return
	}
	n := h.cfg.Insights.TopN
	respondJSON(w, r, http.StatusOK, map[string]models.RankingTable{
		"by_flights":    ds.TopDestinationsByFlights(n),
		"by_profit":     ds.TopDestinationsByProfit(n),
		"by_passengers": ds.PassengersByDestination(n),
	}, false, 0)
}

func (h *Handler) flightsOperatorsHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.requireDataset(w, r)
	if ds == nil {
		return
	}
	n := h.cfg.Insights.TopN
	respondJSON(w, r, http.StatusOK, map[string]models.RankingTable{
		"by_operator":      ds.FlightsByOperator(n),
		"by_aircraft":      ds.ProfitByAircraft(n),
		"by_aircraft_type": ds.ProfitByAircraftType(n),
	}, false, 0)
}

func (h *Handler) flightsHeatmapsHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.requireDataset(w, r)
	if ds == nil {
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]flights.Heatmap{
		"destination_weekday": ds.DestinationWeekdayHeatmap(),
		"weekday_hour":        ds.WeekdayHourHeatmap(),
	}, false, 0)
}

// flightsDetailHandler lists flights matching the optional
// destination, operator and month filters, plus the filter vocabularies
// the UI offers.
func (h *Handler) flightsDetailHandler(w http.ResponseWriter, r *http.Request) {
	ds := h.requireDataset(w, r)
	if ds == nil {
		return
	}
	q := r.URL.Query()
	matched := ds.Filter(q.Get("destination"), q.Get("operator"), q.Get("month"))
	const maxDetail = 500
	truncated := false
	if len(matched) > maxDetail {
		matched = matched[:maxDetail]
		truncated = true
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"flights":      matched,
		"truncated":    truncated,
		"destinations": ds.Destinations(),
		"operators":    ds.Operators(),
	}, false, 0)
}
