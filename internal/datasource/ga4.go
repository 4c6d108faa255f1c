// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package datasource

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/skyintel/skyintel/internal/config"
	"github.com/skyintel/skyintel/internal/models"
)

const gaScope = "https://www.googleapis.com/auth/analytics.readonly"

// GA4Client queries the Google Analytics 4 Data API with a
// service-account bearer token. It implements Querier.
type GA4Client struct {
	cfg     config.GAConfig
	client  *http.Client
	tokens  oauth2.TokenSource
	breaker *gobreaker.CircuitBreaker[[]models.MetricRow]
}

// NewGA4Client builds a client from the GA section of the config. The
// service-account key file is read once at construction.
func NewGA4Client(cfg config.GAConfig) (*GA4Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	key, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading GA credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(key, gaScope)
	if err != nil {
		return nil, fmt.Errorf("parsing GA credentials: %w", err)
	}
	return &GA4Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		tokens:  jwtCfg.TokenSource(context.Background()),
		breaker: newBreaker[[]models.MetricRow]("ga4"),
	}, nil
}

type gaRunReportRequest struct {
	DateRanges []gaDateRange `json:"dateRanges"`
	Dimensions []gaName      `json:"dimensions,omitempty"`
	Metrics    []gaName      `json:"metrics"`
	Limit      string        `json:"limit,omitempty"`
	OrderBys   []gaOrderBy   `json:"orderBys,omitempty"`
}

type gaDateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type gaName struct {
	Name string `json:"name"`
}

type gaOrderBy struct {
	Desc   bool `json:"desc"`
	Metric struct {
		MetricName string `json:"metricName"`
	} `json:"metric"`
}

type gaRunReportResponse struct {
	DimensionHeaders []gaName `json:"dimensionHeaders"`
	MetricHeaders    []gaName `json:"metricHeaders"`
	Rows             []struct {
		DimensionValues []struct {
			Value string `json:"value"`
		} `json:"dimensionValues"`
		MetricValues []struct {
			Value string `json:"value"`
		} `json:"metricValues"`
	} `json:"rows"`
}

// Query runs one report and flattens it into metric rows. An empty
// report yields an empty slice and nil error; metric cells that fail
// to parse are coerced to zero rather than failing the row.
func (c *GA4Client) Query(ctx context.Context, req QueryRequest) ([]models.MetricRow, error) {
	if err := req.Validate(); err != nil {
		return nil, &DataSourceError{Source: "ga4", Op: "runReport", Err: err}
	}
	rows, err := c.breaker.Execute(func() ([]models.MetricRow, error) {
		return c.runReport(ctx, req)
	})
	if err != nil {
		return nil, &DataSourceError{Source: "ga4", Op: "runReport", Err: err}
	}
	return rows, nil
}

func (c *GA4Client) runReport(ctx context.Context, req QueryRequest) ([]models.MetricRow, error) {
	body := gaRunReportRequest{
		DateRanges: []gaDateRange{{
			StartDate: req.Range.Start.Format("2006-01-02"),
			EndDate:   req.Range.End.Format("2006-01-02"),
		}},
	}
	for _, d := range req.Dimensions {
		body.Dimensions = append(body.Dimensions, gaName{Name: d})
	}
	for _, m := range req.Metrics {
		body.Metrics = append(body.Metrics, gaName{Name: m})
	}
	if req.Limit > 0 {
		body.Limit = strconv.Itoa(req.Limit)
	}
	if req.OrderBy != "" {
		ob := gaOrderBy{Desc: true}
		ob.Metric.MetricName = req.OrderBy
		body.OrderBys = []gaOrderBy{ob}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("fetching GA token: %w", err)
	}
	url := fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.cfg.Endpoint, c.cfg.PropertyID)

	resp, err := doWithRetry(ctx, c.client, "ga4", func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		token.SetAuthHeader(httpReq)
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var report gaRunReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return flattenReport(report), nil
}

func flattenReport(report gaRunReportResponse) []models.MetricRow {
	rows := make([]models.MetricRow, 0, len(report.Rows))
	for _, r := range report.Rows {
		row := models.MetricRow{
			Dimensions: make(map[string]string, len(report.DimensionHeaders)),
			Metrics:    make(map[string]float64, len(report.MetricHeaders)),
		}
		for i, h := range report.DimensionHeaders {
			if i < len(r.DimensionValues) {
				row.Dimensions[h.Name] = r.DimensionValues[i].Value
			}
		}
		for i, h := range report.MetricHeaders {
			if i < len(r.MetricValues) {
				v, err := strconv.ParseFloat(r.MetricValues[i].Value, 64)
				if err != nil {
					v = 0
				}
				row.Metrics[h.Name] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}
