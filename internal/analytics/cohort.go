// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"sort"
	"strconv"

	"github.com/skyintel/skyintel/internal/models"
)

// BuildRetention pivots firstSessionDate x nthDay activeUsers rows
// into a retention matrix. Cohorts are sorted newest first, day
// offsets ascending, missing cells filled with zero. Each row is
// normalized by its day-zero size into percentages; a cohort whose
// day-zero count is zero keeps an all-zero row rather than dividing.
// A non-integer day offset coerces to zero. Fewer than two usable
// rows return ErrInsufficientData; a single cohort with multiple
// offsets is a valid matrix.
func BuildRetention(rows []models.MetricRow) (*models.CohortMatrix, error) {
	type cell struct {
		cohort string
		offset int
	}
	counts := make(map[cell]float64)
	cohortSet := make(map[string]bool)
	offsetSet := make(map[int]bool)

	usable := 0
	for _, row := range rows {
		cohort := row.Dimension("firstSessionDate")
		if cohort == "" {
			continue
		}
		offset, err := strconv.Atoi(row.Dimension("nthDay"))
		if err != nil {
			offset = 0
		}
		counts[cell{cohort, offset}] += row.Metric("activeUsers")
		cohortSet[cohort] = true
		offsetSet[offset] = true
		usable++
	}

	if usable < 2 {
		return nil, ErrInsufficientData
	}

	cohorts := make([]string, 0, len(cohortSet))
	for c := range cohortSet {
		cohorts = append(cohorts, c)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(cohorts)))

	offsets := make([]int, 0, len(offsetSet))
	for o := range offsetSet {
		offsets = append(offsets, o)
	}
	sort.Ints(offsets)

	m := &models.CohortMatrix{
		Rows:   cohorts,
		Cols:   offsets,
		Values: make([][]float64, len(cohorts)),
	}
	for i, cohort := range cohorts {
		row := make([]float64, len(offsets))
		dayZero := counts[cell{cohort, 0}]
		if dayZero > 0 {
			for j, offset := range offsets {
				row[j] = counts[cell{cohort, offset}] / dayZero * 100
			}
		}
		m.Values[i] = row
	}
	return m, nil
}

// RetentionAverages returns the mean retention percentage at the given
// day offset across cohorts that have a value there, used for the
// insight context (typically day 1 and day 7).
func RetentionAverages(m *models.CohortMatrix, offset int) float64 {
	col := -1
	for j, o := range m.Cols {
		if o == offset {
			col = j
			break
		}
	}
	if col < 0 {
		return 0
	}
	var sum float64
	var n int
	for _, row := range m.Values {
		if col < len(row) {
			sum += row[col]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
