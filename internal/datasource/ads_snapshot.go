// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package datasource

import (
	"context"
	"sync"
	"time"

	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/models"
)

// AdsSnapshot is the joined result of all Ads report fetches for one
// date range. A failed section is left empty and its error recorded in
// Errors under the section name; the snapshot itself never fails
// because one report did.
type AdsSnapshot struct {
	Range     models.DateRange   `json:"range"`
	Overview  *AdsOverview       `json:"overview,omitempty"`
	Daily     []models.MetricRow `json:"daily"`
	Campaigns []models.MetricRow `json:"campaigns"`
	Geo       []models.MetricRow `json:"geo"`
	Devices   []models.MetricRow `json:"devices"`
	Age       []models.MetricRow `json:"age"`
	Gender    []models.MetricRow `json:"gender"`
	Keywords  []models.MetricRow `json:"keywords"`
	AdGroups  []models.MetricRow `json:"ad_groups"`
	Errors    map[string]string  `json:"errors,omitempty"`
	FetchedAt time.Time          `json:"fetched_at"`
}

type snapshotJob struct {
	name string
	run  func(context.Context) error
}

// FetchSnapshot runs every report fetcher for the range, fanning the
// work out over the configured number of workers and joining the
// results. Section failures degrade that section only.
func (c *AdsClient) FetchSnapshot(ctx context.Context, r models.DateRange) *AdsSnapshot {
	snap := &AdsSnapshot{Range: r, Errors: make(map[string]string)}
	var mu sync.Mutex

	rowsJob := func(name string, fetch func(context.Context, models.DateRange) ([]models.MetricRow, error), dst *[]models.MetricRow) snapshotJob {
		return snapshotJob{name: name, run: func(ctx context.Context) error {
			rows, err := fetch(ctx, r)
			if err != nil {
				return err
			}
			mu.Lock()
			*dst = rows
			mu.Unlock()
			return nil
		}}
	}

	jobs := []snapshotJob{
		{name: "overview", run: func(ctx context.Context) error {
			ov, err := c.Overview(ctx, r)
			if err != nil {
				return err
			}
			mu.Lock()
			snap.Overview = ov
			mu.Unlock()
			return nil
		}},
		rowsJob("daily", c.Daily, &snap.Daily),
		rowsJob("campaigns", c.Campaigns, &snap.Campaigns),
		rowsJob("geo", c.Geo, &snap.Geo),
		rowsJob("devices", c.Devices, &snap.Devices),
		rowsJob("age", c.Age, &snap.Age),
		rowsJob("gender", c.Gender, &snap.Gender),
		rowsJob("keywords", c.Keywords, &snap.Keywords),
		rowsJob("adgroups", c.AdGroups, &snap.AdGroups),
	}

	workers := c.cfg.FetchWorkers
	if workers < 1 {
		workers = 1
	}
	queue := make(chan snapshotJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if err := job.run(ctx); err != nil {
					logging.With("ads").Error().
						Err(err).
						Str("section", job.name).
						Msg("snapshot section failed")
					mu.Lock()
					snap.Errors[job.name] = err.Error()
					mu.Unlock()
				}
			}
		}()
	}
	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	wg.Wait()

	snap.FetchedAt = time.Now().UTC()
	if len(snap.Errors) == 0 {
		snap.Errors = nil
	}
	return snap
}
