// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"errors"
	"testing"

	"github.com/skyintel/skyintel/internal/models"
)

func cohortRow(cohort, nth string, users float64) models.MetricRow {
	return models.MetricRow{
		Dimensions: map[string]string{"firstSessionDate": cohort, "nthDay": nth},
		Metrics:    map[string]float64{"activeUsers": users},
	}
}

func TestBuildRetention(t *testing.T) {
	rows := []models.MetricRow{
		cohortRow("20260101", "0000", 100),
		cohortRow("20260101", "0001", 25),
		cohortRow("20260102", "0000", 50),
		cohortRow("20260102", "0001", 10),
	}
	m, err := BuildRetention(rows)
	if err != nil {
		t.Fatalf("BuildRetention: %v", err)
	}

	// Newest cohort first.
	if m.Rows[0] != "20260102" || m.Rows[1] != "20260101" {
		t.Errorf("cohort order = %v", m.Rows)
	}
	if m.Cols[0] != 0 || m.Cols[1] != 1 {
		t.Errorf("offset order = %v", m.Cols)
	}

	// 100 day-0 users with 25 on day 1 is 25 percent.
	if got := m.Values[1][1]; got != 25 {
		t.Errorf("day-1 retention = %v, want 25", got)
	}
	if got := m.Values[0][1]; got != 20 {
		t.Errorf("day-1 retention = %v, want 20", got)
	}
	for i, row := range m.Values {
		for j, v := range row {
			if v < 0 || v > 100 {
				t.Errorf("cell [%d][%d] = %v outside [0,100]", i, j, v)
			}
		}
	}
}

func TestBuildRetentionZeroDayZero(t *testing.T) {
	rows := []models.MetricRow{
		cohortRow("20260101", "0000", 0),
		cohortRow("20260101", "0001", 7),
		cohortRow("20260102", "0000", 10),
	}
	m, err := BuildRetention(rows)
	if err != nil {
		t.Fatal(err)
	}
	// The zero-day-0 cohort is the older one, so row index 1.
	for j, v := range m.Values[1] {
		if v != 0 {
			t.Errorf("zero-day-0 cohort cell %d = %v, want 0", j, v)
		}
	}
}

func TestBuildRetentionMissingCellsAreZero(t *testing.T) {
	rows := []models.MetricRow{
		cohortRow("20260101", "0000", 10),
		cohortRow("20260102", "0000", 10),
		cohortRow("20260102", "0003", 5),
	}
	m, err := BuildRetention(rows)
	if err != nil {
		t.Fatal(err)
	}
	// Cohort 20260101 has no day-3 row; the cell must exist and be 0.
	if got := m.Values[1][1]; got != 0 {
		t.Errorf("missing cell = %v, want 0", got)
	}
}

func TestBuildRetentionSingleCohort(t *testing.T) {
	rows := []models.MetricRow{
		cohortRow("20260101", "0000", 100),
		cohortRow("20260101", "0007", 25),
	}
	m, err := BuildRetention(rows)
	if err != nil {
		t.Fatalf("BuildRetention: %v", err)
	}
	if len(m.Rows) != 1 || m.Rows[0] != "20260101" {
		t.Fatalf("rows = %v, want single cohort", m.Rows)
	}
	if got := m.Values[0][0]; got != 100 {
		t.Errorf("day-0 = %v, want 100", got)
	}
	if got := m.Values[0][1]; got != 25 {
		t.Errorf("day-7 retention = %v, want 25", got)
	}
}

func TestBuildRetentionBadOffsetCoercesToZero(t *testing.T) {
	rows := []models.MetricRow{
		cohortRow("20260101", "(other)", 40),
		cohortRow("20260101", "0001", 10),
	}
	m, err := BuildRetention(rows)
	if err != nil {
		t.Fatalf("BuildRetention: %v", err)
	}
	// The unparsable offset lands on day 0 and becomes the cohort size.
	if got := m.Values[0][0]; got != 100 {
		t.Errorf("day-0 = %v, want 100", got)
	}
	if got := m.Values[0][1]; got != 25 {
		t.Errorf("day-1 retention = %v, want 25", got)
	}
}

func TestBuildRetentionInsufficientData(t *testing.T) {
	_, err := BuildRetention([]models.MetricRow{cohortRow("20260101", "0000", 10)})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
	_, err = BuildRetention(nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty input err = %v, want ErrInsufficientData", err)
	}
}

func TestRetentionAverages(t *testing.T) {
	m := &models.CohortMatrix{
		Rows:   []string{"b", "a"},
		Cols:   []int{0, 1},
		Values: [][]float64{{100, 30}, {100, 10}},
	}
	if got := RetentionAverages(m, 1); got != 20 {
		t.Errorf("day-1 average = %v, want 20", got)
	}
	if got := RetentionAverages(m, 9); got != 0 {
		t.Errorf("missing offset average = %v, want 0", got)
	}
}
