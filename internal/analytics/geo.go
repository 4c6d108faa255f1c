// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"sort"

	"github.com/skyintel/skyintel/internal/models"
)

// Opportunity is a location with meaningful traffic and no recorded
// conversions, a candidate for campaign attention.
type Opportunity struct {
	Country  string  `json:"country"`
	City     string  `json:"city,omitempty"`
	Sessions float64 `json:"sessions"`
}

// opportunityLimit caps the returned list.
const opportunityLimit = 15

// GeoOpportunities filters location rows down to those with sessions
// at or above max(10, the 70th percentile of sessions) and exactly
// zero conversions, sorted by sessions descending and capped at 15.
// Rows carry country and optionally city dimensions plus sessions and
// conversions metrics.
func GeoOpportunities(rows []models.MetricRow) []Opportunity {
	if len(rows) == 0 {
		return nil
	}
	sessions := make([]float64, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.Metric("sessions"))
	}
	threshold := percentile(sessions, 0.70)
	if threshold < 10 {
		threshold = 10
	}

	var out []Opportunity
	for _, row := range rows {
		s := row.Metric("sessions")
		if s < threshold || row.Metric("conversions") != 0 {
			continue
		}
		country := row.Dimension("country")
		if junkDimensionValues[country] {
			continue
		}
		out = append(out, Opportunity{
			Country:  country,
			City:     row.Dimension("city"),
			Sessions: s,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sessions > out[j].Sessions })
	if len(out) > opportunityLimit {
		out = out[:opportunityLimit]
	}
	return out
}

// percentile returns the p-quantile (0..1) of values using nearest
// rank on a sorted copy.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
