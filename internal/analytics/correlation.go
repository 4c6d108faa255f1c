// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"math"
	"sort"

	"github.com/skyintel/skyintel/internal/models"
)

// CorrelationMatrix holds pairwise Pearson coefficients between the
// listed metrics, in metric order on both axes.
type CorrelationMatrix struct {
	Metrics []string    `json:"metrics"`
	Values  [][]float64 `json:"values"`
}

// Correlate computes the pairwise Pearson correlation of the given
// metrics across rows. Rows whose deviceCategory (or any grouping
// dimension) is a placeholder are expected to be filtered by the
// caller. Fewer than two rows return ErrInsufficientData; a metric
// with zero variance correlates 0 with everything and 1 with itself.
func Correlate(rows []models.MetricRow, metricKeys []string) (*CorrelationMatrix, error) {
	if len(rows) < 2 {
		return nil, ErrInsufficientData
	}

	n := float64(len(rows))
	means := make([]float64, len(metricKeys))
	for i, key := range metricKeys {
		for _, row := range rows {
			means[i] += row.Metric(key)
		}
		means[i] /= n
	}

	m := &CorrelationMatrix{
		Metrics: append([]string(nil), metricKeys...),
		Values:  make([][]float64, len(metricKeys)),
	}
	for i := range metricKeys {
		m.Values[i] = make([]float64, len(metricKeys))
	}
	for i, ki := range metricKeys {
		for j, kj := range metricKeys {
			if j < i {
				m.Values[i][j] = m.Values[j][i]
				continue
			}
			if j == i {
				m.Values[i][j] = 1
				continue
			}
			var cov, vi, vj float64
			for _, row := range rows {
				di := row.Metric(ki) - means[i]
				dj := row.Metric(kj) - means[j]
				cov += di * dj
				vi += di * di
				vj += dj * dj
			}
			if vi == 0 || vj == 0 {
				m.Values[i][j] = 0
				continue
			}
			m.Values[i][j] = cov / math.Sqrt(vi*vj)
		}
	}
	return m, nil
}

// MetricDistribution is the per-group value list behind one box plot.
type MetricDistribution struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Distributions groups rows by groupKey and collects the metric
// values of each group, sorted by label. Placeholder and unknown
// group labels are dropped, matching the ranking filter.
func Distributions(rows []models.MetricRow, groupKey, metricKey string) []MetricDistribution {
	groups := make(map[string][]float64)
	for _, row := range rows {
		label := row.Dimension(groupKey)
		if junkDimensionValues[label] || label == "unknown" || label == "Others" {
			continue
		}
		groups[label] = append(groups[label], row.Metric(metricKey))
	}

	out := make([]MetricDistribution, 0, len(groups))
	for label, values := range groups {
		out = append(out, MetricDistribution{Label: label, Values: values})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
