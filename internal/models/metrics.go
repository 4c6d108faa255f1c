// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package models

import "time"

// MetricRow is one row of a tabular upstream query result. Dimension
// values are kept as strings exactly as the source reported them;
// metric values are already normalized to float64, with unparseable
// cells coerced to zero by the query adapter.
type MetricRow struct {
	Dimensions map[string]string  `json:"dimensions"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Dimension returns the named dimension value, or "" when the row does
// not carry it.
func (r MetricRow) Dimension(name string) string {
	return r.Dimensions[name]
}

// Metric returns the named metric value, or 0 when the row does not
// carry it.
func (r MetricRow) Metric(name string) float64 {
	return r.Metrics[name]
}

// DateRange is a closed interval of calendar days. Both bounds are
// inclusive and interpreted in the reporting property's time zone.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days the range spans, counting
// both endpoints. A range with End before Start has zero days.
func (d DateRange) Days() int {
	if d.End.Before(d.Start) {
		return 0
	}
	return int(d.End.Sub(d.Start).Hours()/24) + 1
}

// Previous returns the adjacent range of equal length ending the day
// before Start, used for period-over-period comparisons.
func (d DateRange) Previous() DateRange {
	n := d.Days()
	end := d.Start.AddDate(0, 0, -1)
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// LastNDays returns the range covering the n days ending yesterday
// relative to now, the default window for every panel.
func LastNDays(now time.Time, n int) DateRange {
	end := now.AddDate(0, 0, -1)
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}
