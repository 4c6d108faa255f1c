// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"github.com/skyintel/skyintel/internal/models"
)

// minFlowWeight keeps every rendered edge visible; the Sankey renderer
// collapses zero-width links.
const minFlowWeight = 0.1

// BuildFlow turns sessionSourceMedium x eventName session counts into
// a flow graph. Rows whose event is not in the allow-list are dropped;
// surviving source and event names become nodes in first-occurrence
// order (all sources before all events), and parallel rows for the
// same pair are summed before the weight floor is applied. An input
// that filters to nothing yields an empty graph, not an error.
func BuildFlow(rows []models.MetricRow, allowedEvents []string) models.FlowGraph {
	allowed := make(map[string]bool, len(allowedEvents))
	for _, e := range allowedEvents {
		allowed[e] = true
	}

	type pair struct{ source, event string }
	weights := make(map[pair]float64)
	var sources, events []string
	sourceSeen := make(map[string]bool)
	eventSeen := make(map[string]bool)
	var pairs []pair

	for _, row := range rows {
		event := row.Dimension("eventName")
		if !allowed[event] {
			continue
		}
		source := row.Dimension("sessionSourceMedium")
		if source == "" {
			source = row.Dimension("sourceMedium")
		}
		if source == "" {
			continue
		}
		p := pair{source, event}
		if _, ok := weights[p]; !ok {
			pairs = append(pairs, p)
		}
		weights[p] += row.Metric("sessions")
		if !sourceSeen[source] {
			sourceSeen[source] = true
			sources = append(sources, source)
		}
		if !eventSeen[event] {
			eventSeen[event] = true
			events = append(events, event)
		}
	}

	graph := models.FlowGraph{}
	if len(pairs) == 0 {
		return graph
	}

	index := make(map[string]int, len(sources)+len(events))
	for _, s := range sources {
		index[s] = len(graph.Nodes)
		graph.Nodes = append(graph.Nodes, models.FlowNode{Name: s})
	}
	// Event nodes are keyed separately in case a source/medium string
	// collides with an event name.
	eventIndex := make(map[string]int, len(events))
	for _, e := range events {
		eventIndex[e] = len(graph.Nodes)
		graph.Nodes = append(graph.Nodes, models.FlowNode{Name: e})
	}

	for _, p := range pairs {
		w := weights[p]
		if w < minFlowWeight {
			w = minFlowWeight
		}
		graph.Edges = append(graph.Edges, models.FlowEdge{
			Source: index[p.source],
			Target: eventIndex[p.event],
			Value:  w,
		})
	}
	return graph
}
