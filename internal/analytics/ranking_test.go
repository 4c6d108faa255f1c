// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package analytics

import (
	"testing"

	"github.com/skyintel/skyintel/internal/models"
)

func dimRow(key, value string, metric string, n float64) models.MetricRow {
	return models.MetricRow{
		Dimensions: map[string]string{key: value},
		Metrics:    map[string]float64{metric: n},
	}
}

func TestTopN(t *testing.T) {
	rows := []models.MetricRow{
		dimRow("country", "Spain", "sessions", 100),
		dimRow("country", "France", "sessions", 300),
		dimRow("country", "Spain", "sessions", 50),
		dimRow("country", "Italy", "sessions", 20),
		dimRow("country", "(not set)", "sessions", 999),
	}
	table := TopN(rows, "country", "sessions", 2, false)

	if len(table.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(table.Entries))
	}
	if table.Entries[0].Key != "France" || table.Entries[0].Value != 300 {
		t.Errorf("first entry = %+v", table.Entries[0])
	}
	// Spain's two rows sum before ranking.
	if table.Entries[1].Key != "Spain" || table.Entries[1].Value != 150 {
		t.Errorf("second entry = %+v", table.Entries[1])
	}
}

func TestTopNAscending(t *testing.T) {
	rows := []models.MetricRow{
		dimRow("city", "A", "cost", 5),
		dimRow("city", "B", "cost", 1),
	}
	table := TopN(rows, "city", "cost", 10, true)
	if table.Entries[0].Key != "B" {
		t.Errorf("ascending order wrong: %+v", table.Entries)
	}
}

func TestTopNStableForTies(t *testing.T) {
	rows := []models.MetricRow{
		dimRow("k", "first", "v", 7),
		dimRow("k", "second", "v", 7),
		dimRow("k", "third", "v", 7),
	}
	table := TopN(rows, "k", "v", 0, false)
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if table.Entries[i].Key != w {
			t.Errorf("entry %d = %q, want %q (stable order)", i, table.Entries[i].Key, w)
		}
	}
}

func TestTopNPreservesSums(t *testing.T) {
	rows := []models.MetricRow{
		dimRow("k", "a", "v", 1),
		dimRow("k", "b", "v", 2),
		dimRow("k", "a", "v", 3),
	}
	table := TopN(rows, "k", "v", 0, false)
	var total float64
	for _, e := range table.Entries {
		total += e.Value
	}
	if total != 6 {
		t.Errorf("untruncated total = %v, want input sum 6", total)
	}
}

func TestTopNEmptyInput(t *testing.T) {
	table := TopN(nil, "k", "v", 10, false)
	if len(table.Entries) != 0 {
		t.Errorf("empty input should give empty table, got %+v", table)
	}
}
