// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"testing"

	"github.com/skyintel/skyintel/internal/models"
)

func geoRow(country, city string, sessions, conversions float64) models.MetricRow {
	return models.MetricRow{
		Dimensions: map[string]string{"country": country, "city": city},
		Metrics:    map[string]float64{"sessions": sessions, "conversions": conversions},
	}
}

func TestGeoOpportunities(t *testing.T) {
	rows := []models.MetricRow{
		geoRow("Spain", "Madrid", 500, 0),   // opportunity
		geoRow("Spain", "Barcelona", 400, 3), // converts, excluded
		geoRow("France", "Paris", 450, 0),   // opportunity
		geoRow("Italy", "Rome", 5, 0),       // below threshold
		geoRow("Portugal", "Porto", 8, 0),   // below threshold
	}
	ops := GeoOpportunities(rows)
	if len(ops) != 2 {
		t.Fatalf("got %d opportunities, want 2: %+v", len(ops), ops)
	}
	if ops[0].Country != "Spain" || ops[0].Sessions != 500 {
		t.Errorf("first opportunity = %+v, want Spain 500", ops[0])
	}
	if ops[1].Country != "France" {
		t.Errorf("second opportunity = %+v", ops[1])
	}
}

func TestGeoOpportunitiesMinimumThreshold(t *testing.T) {
	// All traffic is tiny; the floor of 10 sessions must still apply
	// even though the percentile is lower.
	rows := []models.MetricRow{
		geoRow("A", "", 3, 0),
		geoRow("B", "", 4, 0),
		geoRow("C", "", 5, 0),
	}
	if ops := GeoOpportunities(rows); len(ops) != 0 {
		t.Errorf("sub-floor traffic should yield nothing, got %+v", ops)
	}
}

func TestGeoOpportunitiesCap(t *testing.T) {
	var rows []models.MetricRow
	for i := 0; i < 40; i++ {
		rows = append(rows, geoRow("Country", "", 1000, 0))
	}
	if ops := GeoOpportunities(rows); len(ops) != 15 {
		t.Errorf("got %d opportunities, cap is 15", len(ops))
	}
}

func TestGeoOpportunitiesEmpty(t *testing.T) {
	if ops := GeoOpportunities(nil); ops != nil {
		t.Errorf("nil input should yield nil, got %+v", ops)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(values, 0.70); got != 7 {
		t.Errorf("p70 = %v, want 7", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("empty percentile = %v, want 0", got)
	}
}
