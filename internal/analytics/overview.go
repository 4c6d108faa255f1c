// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"sort"

	"github.com/skyintel/skyintel/internal/models"
)

// Overview is the traffic summary panel: daily series plus totals and
// the derived conversion rate.
type Overview struct {
	Series          []OverviewPoint `json:"series"`
	TotalSessions   float64         `json:"total_sessions"`
	TotalUsers      float64         `json:"total_users"`
	TotalConversion float64         `json:"total_conversions"`
	// ConversionRate is conversions over sessions as a percentage,
	// zero when there were no sessions.
	ConversionRate float64 `json:"conversion_rate"`
	// Trend is the min-max normalized session series for sparklines.
	Trend []float64 `json:"trend"`
}

// OverviewPoint is one day of the overview series.
type OverviewPoint struct {
	Date        string  `json:"date"`
	Sessions    float64 `json:"sessions"`
	Users       float64 `json:"users"`
	Conversions float64 `json:"conversions"`
}

// BuildOverview aggregates date-keyed rows carrying sessions,
// totalUsers and conversions metrics into the overview panel shape.
// Rows are re-sorted by date because upstream ordering is not
// guaranteed after a cache round trip.
func BuildOverview(rows []models.MetricRow) *Overview {
	byDate := make(map[string]*OverviewPoint)
	var dates []string
	for _, row := range rows {
		date := row.Dimension("date")
		if date == "" {
			continue
		}
		p, ok := byDate[date]
		if !ok {
			p = &OverviewPoint{Date: date}
			byDate[date] = p
			dates = append(dates, date)
		}
		p.Sessions += row.Metric("sessions")
		p.Users += row.Metric("totalUsers")
		p.Conversions += row.Metric("conversions")
	}
	sort.Strings(dates)

	ov := &Overview{Series: make([]OverviewPoint, 0, len(dates))}
	sessions := make([]float64, 0, len(dates))
	for _, date := range dates {
		p := byDate[date]
		ov.Series = append(ov.Series, *p)
		ov.TotalSessions += p.Sessions
		ov.TotalUsers += p.Users
		ov.TotalConversion += p.Conversions
		sessions = append(sessions, p.Sessions)
	}
	if ov.TotalSessions > 0 {
		ov.ConversionRate = ov.TotalConversion / ov.TotalSessions * 100
	}
	ov.Trend = NormalizeSeries(sessions)
	return ov
}

// WhatIfScenario projects conversions from baseline traffic under
// session and conversion-rate changes.
type WhatIfScenario struct {
	BaselineSessions     float64 `json:"baseline_sessions"`
	BaselineConversions  float64 `json:"baseline_conversions"`
	BaselineRate         float64 `json:"baseline_rate"`
	ScenarioSessions     float64 `json:"scenario_sessions"`
	ScenarioRate         float64 `json:"scenario_rate"`
	ProjectedConversions float64 `json:"projected_conversions"`
}

// Simulate applies percentage deltas to the baseline sessions and
// conversion rate. The scenario rate is clamped to [0,100] after the
// delta so extreme inputs stay meaningful.
func Simulate(baselineSessions, baselineConversions, sessionsDeltaPct, rateDeltaPct float64) WhatIfScenario {
	s := WhatIfScenario{
		BaselineSessions:    baselineSessions,
		BaselineConversions: baselineConversions,
	}
	if baselineSessions > 0 {
		s.BaselineRate = baselineConversions / baselineSessions * 100
	}
	s.ScenarioSessions = baselineSessions * (1 + sessionsDeltaPct/100)
	if s.ScenarioSessions < 0 {
		s.ScenarioSessions = 0
	}
	s.ScenarioRate = s.BaselineRate * (1 + rateDeltaPct/100)
	if s.ScenarioRate < 0 {
		s.ScenarioRate = 0
	}
	if s.ScenarioRate > 100 {
		s.ScenarioRate = 100
	}
	s.ProjectedConversions = s.ScenarioSessions * s.ScenarioRate / 100
	return s
}
