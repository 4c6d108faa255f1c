// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/skyintel/skyintel/internal/models"
)

func series(values []float64) []models.TimePoint {
	points := make([]models.TimePoint, len(values))
	for i, v := range values {
		points[i] = models.TimePoint{Date: fmt.Sprintf("2026-01-%02d", i+1), Value: v}
	}
	return points
}

func TestDecomposeTooShort(t *testing.T) {
	_, err := Decompose(series(make([]float64, 13)))
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("13-point series err = %v, want ErrInsufficientData", err)
	}
}

func TestDecomposeComponentsSum(t *testing.T) {
	values := make([]float64, 28)
	for i := range values {
		// Rising trend plus weekly oscillation.
		values[i] = 100 + float64(i)*2 + 10*math.Sin(2*math.Pi*float64(i)/7)
	}
	d, err := Decompose(series(values))
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if len(d.Trend) != 28 || len(d.Seasonal) != 28 || len(d.Residual) != 28 {
		t.Fatal("component lengths differ from input")
	}
	// Additive model: observed == trend + seasonal + residual.
	for i := range values {
		sum := d.Trend[i] + d.Seasonal[i] + d.Residual[i]
		if math.Abs(sum-d.Observed[i]) > 1e-9 {
			t.Errorf("components at %d sum to %v, observed %v", i, sum, d.Observed[i])
		}
	}
	// The weekly seasonal pattern repeats.
	for i := 7; i < 28; i++ {
		if math.Abs(d.Seasonal[i]-d.Seasonal[i-7]) > 1e-9 {
			t.Errorf("seasonal not periodic at %d", i)
		}
	}
}

func TestDecomposeFlagsAnomaly(t *testing.T) {
	values := make([]float64, 28)
	for i := range values {
		values[i] = 100
	}
	values[20] = 500 // spike
	d, err := Decompose(series(values))
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, idx := range d.Anomalies {
		if idx == 20 {
			found = true
		}
	}
	if !found {
		t.Errorf("spike at index 20 not flagged, anomalies = %v", d.Anomalies)
	}
}

func TestDecomposeConstantSeriesNoAnomalies(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 50
	}
	d, err := Decompose(series(values))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Anomalies) != 0 {
		t.Errorf("constant series flagged anomalies %v", d.Anomalies)
	}
}

func TestNormalizeSeries(t *testing.T) {
	out := NormalizeSeries([]float64{10, 20, 30})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if got := NormalizeSeries([]float64{5, 5}); got[0] != 0 || got[1] != 0 {
		t.Errorf("constant series = %v, want zeros", got)
	}
	if NormalizeSeries(nil) != nil {
		t.Error("nil input should return nil")
	}
}
