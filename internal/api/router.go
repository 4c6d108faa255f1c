// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyintel/skyintel/internal/middleware"
)

// Router assembles the HTTP surface: health and metrics at the root,
// every dashboard endpoint under /api/v1.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)

	if len(h.cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	if h.cfg.Server.RateLimit > 0 {
		r.Use(httprate.LimitByIP(h.cfg.Server.RateLimit, time.Minute))
	}

	r.Get("/api/v1/health", h.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/ga", func(r chi.Router) {
		r.Get("/overview", h.gaOverviewHandler)
		r.Get("/demography", h.gaDemographyHandler)
		r.Get("/geo-opportunities", h.gaGeoOpportunitiesHandler)
		r.Get("/funnels", h.gaFunnelsHandler)
		r.Get("/flow", h.gaFlowHandler)
		r.Get("/cohort", h.gaCohortHandler)
		r.Get("/temporal", h.gaTemporalHandler)
		r.Get("/correlations", h.gaCorrelationsHandler)
		r.Get("/what-if", h.gaWhatIfHandler)
	})

	r.Route("/api/v1/ads", func(r chi.Router) {
		r.Get("/snapshot", h.adsSnapshotHandler)
		r.Get("/overview", h.adsOverviewHandler)
		r.Get("/campaigns", h.adsCampaignsHandler)
		r.Get("/keywords", h.adsKeywordsHandler)
		r.Get("/geo", h.adsGeoHandler)
		r.Get("/devices", h.adsDevicesHandler)
		r.Get("/demographics", h.adsDemographicsHandler)
	})

	r.Route("/api/v1/social", func(r chi.Router) {
		r.Get("/facebook", h.socialFacebookHandler)
		r.Get("/instagram", h.socialInstagramHandler)
		r.Get("/followers", h.socialFollowersHandler)
		r.Get("/demography", h.socialDemographyHandler)
		r.Get("/top-posts", h.socialTopPostsHandler)
	})

	r.Route("/api/v1/flights", func(r chi.Router) {
		r.Post("/", h.flightsUploadHandler)
		r.Get("/kpis", h.flightsKPIsHandler)
		r.Get("/monthly", h.flightsMonthlyHandler)
		r.Get("/destinations", h.flightsDestinationsHandler)
		r.Get("/operators", h.flightsOperatorsHandler)
		r.Get("/heatmaps", h.flightsHeatmapsHandler)
		r.Get("/detail", h.flightsDetailHandler)
	})

	r.Post("/api/v1/insights/{panel}", h.insightHandler)

	return r
}
