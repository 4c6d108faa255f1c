// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/skyintel/skyintel/internal/analytics"
	"github.com/skyintel/skyintel/internal/datasource"
	"github.com/skyintel/skyintel/internal/models"
)

// panelParams is the cache key payload shared by the date-ranged GA
// panels.
type panelParams struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func keyParams(r models.DateRange) panelParams {
	return panelParams{
		Start: r.Start.Format("2006-01-02"),
		End:   r.End.Format("2006-01-02"),
	}
}

// requireGA resolves the querier or reports ErrNotConfigured through
// the executor's error mapping.
func (h *Handler) requireGA() (datasource.Querier, error) {
	if h.ga == nil {
		return nil, datasource.ErrNotConfigured
	}
	return h.ga, nil
}

func (h *Handler) gaOverviewHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_overview", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		rows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"date"},
			Metrics:    []string{"sessions", "totalUsers", "conversions"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		return analytics.BuildOverview(rows), nil
	})
}

// demographyPanel groups the audience splits the demography tab shows.
type demographyPanel struct {
	Gender    models.RankingTable `json:"gender"`
	Age       models.RankingTable `json:"age"`
	Countries models.RankingTable `json:"countries"`
	Cities    models.RankingTable `json:"cities"`
}

func (h *Handler) gaDemographyHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_demography", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		panel := demographyPanel{}
		splits := []struct {
			dimension string
			metric    string
			dst       *models.RankingTable
			limit     int
		}{
			{"userGender", "activeUsers", &panel.Gender, 0},
			{"userAgeBracket", "activeUsers", &panel.Age, 0},
			{"country", "sessions", &panel.Countries, 10},
			{"city", "sessions", &panel.Cities, 10},
		}
		for _, s := range splits {
			rows, err := ga.Query(ctx, datasource.QueryRequest{
				Dimensions: []string{s.dimension},
				Metrics:    []string{s.metric},
				Range:      dr,
			})
			if err != nil {
				return nil, err
			}
			*s.dst = analytics.TopN(rows, s.dimension, s.metric, s.limit, false)
		}
		return panel, nil
	})
}

func (h *Handler) gaGeoOpportunitiesHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_geo_opportunities", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		byCountry, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"country"},
			Metrics:    []string{"sessions", "conversions"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		byCity, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"country", "city"},
			Metrics:    []string{"sessions", "conversions"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"countries": analytics.GeoOpportunities(byCountry),
			"cities":    analytics.GeoOpportunities(byCity),
		}, nil
	})
}

// funnelSteps resolves the configured funnels, falling back to the
// built-in set when the config has none.
func (h *Handler) funnelSteps() map[string][]models.FunnelStep {
	parsed, err := h.cfg.Insights.ParseFunnelSteps()
	if err != nil || len(parsed) == 0 {
		return analytics.DefaultFunnels()
	}
	steps := make([]models.FunnelStep, 0, len(parsed)+1)
	steps = append(steps, models.FunnelStep{Label: "Sessions"})
	for _, p := range parsed {
		steps = append(steps, models.FunnelStep{Label: p[0], Dimension: "eventName", Match: p[1]})
	}
	return map[string][]models.FunnelStep{"custom": steps}
}

// funnelsPanel is the funnels tab payload: one result per configured
// funnel, event KPI totals and the acquisition top-10.
type funnelsPanel struct {
	Funnels     map[string]models.FunnelResult `json:"funnels"`
	EventTotals models.RankingTable            `json:"event_totals"`
	Acquisition models.RankingTable            `json:"acquisition"`
}

func (h *Handler) gaFunnelsHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_funnels", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		panel := funnelsPanel{Funnels: make(map[string]models.FunnelResult)}
		for name, steps := range h.funnelSteps() {
			result, err := analytics.BuildFunnel(ctx, ga, steps, dr)
			if err != nil {
				return nil, err
			}
			panel.Funnels[name] = result
		}

		eventRows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"eventName"},
			Metrics:    []string{"eventCount"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		panel.EventTotals = analytics.TopN(eventRows, "eventName", "eventCount", 15, false)

		sourceRows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"sessionSourceMedium"},
			Metrics:    []string{"sessions"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		panel.Acquisition = analytics.TopN(sourceRows, "sessionSourceMedium", "sessions", 10, false)
		return panel, nil
	})
}

func (h *Handler) gaFlowHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_flow", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		rows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"sessionSourceMedium", "eventName"},
			Metrics:    []string{"sessions"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		return analytics.BuildFlow(rows, h.cfg.Insights.FlowEvents), nil
	})
}

// cohortPanel wraps the retention matrix with the day-1/day-7 context
// the insight prompt uses.
type cohortPanel struct {
	Matrix      *models.CohortMatrix `json:"matrix"`
	AvgDayOne   float64              `json:"avg_day_1"`
	AvgDaySeven float64              `json:"avg_day_7"`
}

func (h *Handler) gaCohortHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_cohort", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		rows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"firstSessionDate", "nthDay"},
			Metrics:    []string{"activeUsers"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		matrix, err := analytics.BuildRetention(rows)
		if err != nil {
			return nil, err
		}
		matrix.Truncate(h.cfg.Insights.CohortMaxRows, h.cfg.Insights.CohortMaxCols)
		return cohortPanel{
			Matrix:      matrix,
			AvgDayOne:   analytics.RetentionAverages(matrix, 1),
			AvgDaySeven: analytics.RetentionAverages(matrix, 7),
		}, nil
	})
}

func (h *Handler) gaTemporalHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_temporal", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		rows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"date"},
			Metrics:    []string{"sessions"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		points := make([]models.TimePoint, 0, len(rows))
		for _, row := range rows {
			points = append(points, models.TimePoint{
				Date:  row.Dimension("date"),
				Value: row.Metric("sessions"),
			})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
		return analytics.Decompose(points)
	})
}

// correlationsPanel is the correlations tab payload: the cross-metric
// matrix over per-day-per-device rows plus the conversion
// distributions behind the device and age box plots.
type correlationsPanel struct {
	Matrix              *analytics.CorrelationMatrix   `json:"matrix"`
	ConversionsByDevice []analytics.MetricDistribution `json:"conversions_by_device"`
	ConversionsByAge    []analytics.MetricDistribution `json:"conversions_by_age"`
}

func (h *Handler) gaCorrelationsHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	h.executePanel(w, r, "ga_correlations", keyParams(dr), func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		corrMetrics := []string{"sessions", "activeUsers", "averageSessionDuration", "bounceRate", "conversions"}
		deviceRows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"date", "deviceCategory"},
			Metrics:    corrMetrics,
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		kept := make([]models.MetricRow, 0, len(deviceRows))
		for _, row := range deviceRows {
			if row.Dimension("deviceCategory") != "(not set)" {
				kept = append(kept, row)
			}
		}
		matrix, err := analytics.Correlate(kept, corrMetrics)
		if err != nil {
			return nil, err
		}

		ageRows, err := ga.Query(ctx, datasource.QueryRequest{
			Dimensions: []string{"userAgeBracket"},
			Metrics:    []string{"conversions", "activeUsers"},
			Range:      dr,
		})
		if err != nil {
			return nil, err
		}
		return correlationsPanel{
			Matrix:              matrix,
			ConversionsByDevice: analytics.Distributions(kept, "deviceCategory", "conversions"),
			ConversionsByAge:    analytics.Distributions(ageRows, "userAgeBracket", "conversions"),
		}, nil
	})
}

func (h *Handler) gaWhatIfHandler(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRange(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	sessionsDelta, err := floatParam(r, "sessions_delta", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}
	rateDelta, err := floatParam(r, "cr_delta", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error())
		return
	}

	type whatIfParams struct {
		panelParams
		SessionsDelta float64 `json:"sessions_delta"`
		RateDelta     float64 `json:"cr_delta"`
	}
	params := whatIfParams{panelParams: keyParams(dr), SessionsDelta: sessionsDelta, RateDelta: rateDelta}

	h.executePanel(w, r, "ga_what_if", params, func(ctx context.Context) (interface{}, error) {
		ga, err := h.requireGA()
		if err != nil {
			return nil, err
		}
		rows, err := ga.Query(ctx, datasource.QueryRequest{
			Metrics: []string{"sessions", "conversions"},
			Range:   dr,
		})
		if err != nil {
			return nil, err
		}
		var sessions, conversions float64
		for _, row := range rows {
			sessions += row.Metric("sessions")
			conversions += row.Metric("conversions")
		}
		return analytics.Simulate(sessions, conversions, sessionsDelta, rateDelta), nil
	})
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errBadFloat(name, raw)
	}
	return v, nil
}
