// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package models

// FunnelStep describes one stage of a conversion funnel: the label the
// dashboard shows, the dimension to filter on (eventName unless stated
// otherwise) and the value rows must match to count toward the stage.
type FunnelStep struct {
	Label     string `json:"label"`
	Dimension string `json:"dimension"`
	Match     string `json:"match"`
}

// FunnelStage is one computed stage of a funnel. Count is the raw
// total for the stage; stages are not clamped against each other, so a
// later stage may exceed an earlier one when users repeat events.
type FunnelStage struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
	// Rate is the stage count divided by the first stage count, in
	// [0,1]. It is 0 when the first stage is empty.
	Rate float64 `json:"rate"`
}

// FunnelResult is the ordered list of computed funnel stages.
type FunnelResult struct {
	Stages []FunnelStage `json:"stages"`
}

// CohortMatrix is a retention pivot: one row per acquisition date, one
// column per day-offset since acquisition. Values[i][j] holds the
// retention percentage of cohort Rows[i] on day Cols[j], normalized by
// the cohort's day-zero size into [0,100]. A cohort with zero day-zero
// users has an all-zero row.
type CohortMatrix struct {
	Rows   []string    `json:"rows"`
	Cols   []int       `json:"cols"`
	Values [][]float64 `json:"values"`
}

// Truncate limits the matrix to the first maxRows cohorts and the
// first maxCols day offsets, returning the receiver for chaining.
func (m *CohortMatrix) Truncate(maxRows, maxCols int) *CohortMatrix {
	if len(m.Rows) > maxRows {
		m.Rows = m.Rows[:maxRows]
		m.Values = m.Values[:maxRows]
	}
	if len(m.Cols) > maxCols {
		m.Cols = m.Cols[:maxCols]
		for i := range m.Values {
			m.Values[i] = m.Values[i][:maxCols]
		}
	}
	return m
}

// FlowNode is one node of a traffic flow graph, either a source/medium
// on the left or an event name on the right.
type FlowNode struct {
	Name string `json:"name"`
}

// FlowEdge is a weighted link between two flow nodes, indexing into
// FlowGraph.Nodes. Weights are floored at a small positive value so
// the renderer never collapses an edge to zero width.
type FlowEdge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// FlowGraph is the Sankey-style structure consumed by the dashboard's
// flow panel.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

// RankingEntry is one row of a top-N ranking, keyed by the dimension
// value being ranked.
type RankingEntry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// RankingTable is a descending top-N ranking over a single metric.
type RankingTable struct {
	Metric  string         `json:"metric"`
	Entries []RankingEntry `json:"entries"`
}

// TimePoint is one sample of a daily time series.
type TimePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Decomposition is a daily series split into trend, weekly seasonal
// and residual components, with residual anomalies flagged.
type Decomposition struct {
	Dates     []string  `json:"dates"`
	Observed  []float64 `json:"observed"`
	Trend     []float64 `json:"trend"`
	Seasonal  []float64 `json:"seasonal"`
	Residual  []float64 `json:"residual"`
	Anomalies []int     `json:"anomalies"`
}
