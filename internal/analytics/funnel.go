// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"context"

	"github.com/skyintel/skyintel/internal/datasource"
	"github.com/skyintel/skyintel/internal/models"
)

// DefaultFunnels are the conversion funnels shipped with the
// dashboard. Each starts from total sessions and tracks the key events
// of one contact channel.
func DefaultFunnels() map[string][]models.FunnelStep {
	return map[string][]models.FunnelStep{
		"whatsapp": {
			{Label: "Sessions", Dimension: "", Match: ""},
			{Label: "WhatsApp click", Dimension: "eventName", Match: "click_whatsapp"},
		},
		"form": {
			{Label: "Sessions", Dimension: "", Match: ""},
			{Label: "Form start", Dimension: "eventName", Match: "form_start"},
			{Label: "Form submit", Dimension: "eventName", Match: "generate_lead"},
		},
		"calls": {
			{Label: "Sessions", Dimension: "", Match: ""},
			{Label: "Phone click", Dimension: "eventName", Match: "click_phone"},
		},
		"conversion": {
			{Label: "Sessions", Dimension: "", Match: ""},
			{Label: "Engaged", Dimension: "eventName", Match: "user_engagement"},
			{Label: "Conversion", Dimension: "eventName", Match: "generate_lead"},
		},
	}
}

// BuildFunnel computes the stage counts for the given steps. A step
// with an empty Match is the entry stage and counts total sessions;
// every other stage sums eventCount over rows whose dimension equals
// Match. Stage counts are measured independently and deliberately not
// clamped: repeated events can push a later stage above an earlier
// one, which the dashboard surfaces as-is.
func BuildFunnel(ctx context.Context, q datasource.Querier, steps []models.FunnelStep, r models.DateRange) (models.FunnelResult, error) {
	result := models.FunnelResult{Stages: make([]models.FunnelStage, 0, len(steps))}
	if len(steps) == 0 {
		return result, nil
	}

	var eventRows []models.MetricRow
	var sessionsTotal float64
	needsEvents := false
	needsSessions := false
	for _, s := range steps {
		if s.Match == "" {
			needsSessions = true
		} else {
			needsEvents = true
		}
	}

	if needsSessions {
		rows, err := q.Query(ctx, datasource.QueryRequest{
			Metrics: []string{"sessions"},
			Range:   r,
		})
		if err != nil {
			return models.FunnelResult{}, err
		}
		for _, row := range rows {
			sessionsTotal += row.Metric("sessions")
		}
	}
	if needsEvents {
		rows, err := q.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"eventName"},
			Metrics:    []string{"eventCount"},
			Range:      r,
		})
		if err != nil {
			return models.FunnelResult{}, err
		}
		eventRows = rows
	}

	for _, s := range steps {
		var count float64
		if s.Match == "" {
			count = sessionsTotal
		} else {
			dim := s.Dimension
			if dim == "" {
				dim = "eventName"
			}
			for _, row := range eventRows {
				if row.Dimension(dim) == s.Match {
					count += row.Metric("eventCount")
				}
			}
		}
		result.Stages = append(result.Stages, models.FunnelStage{Label: s.Label, Count: count})
	}

	if first := result.Stages[0].Count; first > 0 {
		for i := range result.Stages {
			result.Stages[i].Rate = result.Stages[i].Count / first
		}
	}
	return result, nil
}
