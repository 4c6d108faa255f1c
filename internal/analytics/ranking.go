// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"sort"

	"github.com/skyintel/skyintel/internal/models"
)

// junkDimensionValues are the GA placeholder values excluded from
// rankings.
var junkDimensionValues = map[string]bool{
	"(not set)":      true,
	"(not provided)": true,
	"(other)":        true,
	"":               true,
}

// TopN groups rows by groupKey, sums valueKey per group and returns
// the first n entries sorted by value (descending unless ascending is
// set). The sort is stable over first-occurrence order so equal values
// keep the upstream ordering. Placeholder dimension values like
// "(not set)" are dropped before grouping.
func TopN(rows []models.MetricRow, groupKey, valueKey string, n int, ascending bool) models.RankingTable {
	table := models.RankingTable{Metric: valueKey}
	sums := make(map[string]float64)
	var order []string

	for _, row := range rows {
		key := row.Dimension(groupKey)
		if junkDimensionValues[key] {
			continue
		}
		if _, ok := sums[key]; !ok {
			order = append(order, key)
		}
		sums[key] += row.Metric(valueKey)
	}

	entries := make([]models.RankingEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, models.RankingEntry{Key: key, Value: sums[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Value < entries[j].Value
		}
		return entries[i].Value > entries[j].Value
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	table.Entries = entries
	return table
}
