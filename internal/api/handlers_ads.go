// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"context"
	"net/http"

	"github.com/skyintel/skyintel/internal/datasource"
	"github.com/skyintel/skyintel/internal/models"
)

// adsPanel factors the shared shape of the Ads endpoints: validate the
// range, require the client, run one fetch through the executor.
func (h *Handler) adsPanel(w http.ResponseWriter, r *http.Request, panel string, fetch func(ctx context.Context, dr models.DateRange) (interface{}, error)) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, panel, keyParams(dr), func(ctx context.Context) (interface{}, error) {
		if h.ads == nil {
			return nil, datasource.ErrNotConfigured
		}
		return fetch(ctx, dr)
	})
}

func (h *Handler) adsSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	h.adsPanel(w, r, "ads_snapshot", func(ctx context.Context, dr models.DateRange) (interface{}, error) {
		return h.ads.FetchSnapshot(ctx, dr), nil
	})
}

func (h *Handler) adsOverviewHandler(w http.ResponseWriter, r *http.Request) {
	h.adsPanel(w, r, "ads_overview", func(ctx context.Context, dr models.DateRange) (interface{}, error) {
		return h.ads.Overview(ctx, dr)
	})
}

func (h *Handler) adsCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	h.adsPanel(w, r, "ads_campaigns", func(ctx context.Context, dr models.DateRange) (interface{}, error) {
		return h.ads.Campaigns(ctx, dr)
	})
}

func (h *Handler) adsKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	h.adsPanel(w, r, "ads_keywords", func(ctx context.Context, dr models.DateRange) (interface{}, error) {
		keywords, err := h.ads.Keywords(ctx, dr)
		if err != nil {
			return nil, err
		}
		adGroups, err := h.ads.AdGroups(ctx, dr)
		if err != nil {
			return nil, err
		}
		return map[string][]models.MetricRow{
			"keywords":  keywords,
			"ad_groups": adGroups,
		}, nil
	})
}

func (h *Handler) adsGeoHandler(w http.ResponseWriter, r *http.Request) {
	h.adsPanel(w, r, "ads_geo", func(ctx context.Context, dr models.DateRange) (interface{}, error) {
		return h.ads.Geo(ctx, dr)
	})
}

func (h *Handler) adsDevicesHandler(w http.ResponseWriter, r *http.Request) {
	h.adsPanel(w, r, "ads_devices", func(ctx context.Context, dr models.DateRange) (interface{}, error) {
		return h.ads.Devices(ctx, dr)
	})
}

func (h *Handler) adsDemographicsHandler(w http.ResponseWriter, r *http.Request) {
	h.adsPanel(w, r, "ads_demographics", func(ctx context.Context, dr models.DateRange) (interface{}, error) {
		age, err := h.ads.Age(ctx, dr)
		if err != nil {
			return nil, err
		}
		gender, err := h.ads.Gender(ctx, dr)
		if err != nil {
			return nil, err
		}
		return map[string][]models.MetricRow{
			"age":    age,
			"gender": gender,
		}, nil
	})
}
