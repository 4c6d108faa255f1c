// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/skyintel/skyintel/internal/cache"
	"github.com/skyintel/skyintel/internal/config"
	"github.com/skyintel/skyintel/internal/datasource"
	"github.com/skyintel/skyintel/internal/insight"
	"github.com/skyintel/skyintel/internal/models"
)

// fakeQuerier answers canned rows keyed on the first dimension ("" for
// dimensionless queries) and counts calls for cache assertions.
type fakeQuerier struct {
	rows  map[string][]models.MetricRow
	err   error
	calls int
}

func (f *fakeQuerier) Query(_ context.Context, req datasource.QueryRequest) ([]models.MetricRow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	key := ""
	if len(req.Dimensions) > 0 {
		key = req.Dimensions[0]
	}
	return f.rows[key], nil
}

func newTestHandler(t *testing.T, ga datasource.Querier) *Handler {
	t.Helper()
	cfg := config.Default()
	c := cache.New(time.Minute, time.Minute)
	t.Cleanup(c.Stop)
	return New(&cfg, c, ga, nil, nil, insight.New(cfg.OpenAI))
}

func doRequest(t *testing.T, h *Handler, method, target string, body string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding envelope: %v (body %q)", err, rec.Body.String())
	}
	return rec, resp
}

func gaRows() map[string][]models.MetricRow {
	return map[string][]models.MetricRow{
		"date": {
			{Dimensions: map[string]string{"date": "2026-08-01"}, Metrics: map[string]float64{"sessions": 100, "totalUsers": 80, "conversions": 5}},
			{Dimensions: map[string]string{"date": "2026-08-02"}, Metrics: map[string]float64{"sessions": 120, "totalUsers": 90, "conversions": 7}},
		},
		"": {
			{Metrics: map[string]float64{"sessions": 220, "conversions": 12}},
		},
	}
}

func TestOverviewEnvelope(t *testing.T) {
	h := newTestHandler(t, &fakeQuerier{rows: gaRows()})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/overview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Fatalf("envelope status = %q", resp.Status)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("request id missing from metadata")
	}
	if resp.Metadata.Cached {
		t.Error("first request reported as cached")
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T", resp.Data)
	}
	if got := data["total_sessions"].(float64); got != 220 {
		t.Errorf("total_sessions = %v, want 220", got)
	}
}

func TestOverviewCacheHit(t *testing.T) {
	q := &fakeQuerier{rows: gaRows()}
	h := newTestHandler(t, q)

	doRequest(t, h, http.MethodGet, "/api/v1/ga/overview", "")
	callsAfterFirst := q.calls

	_, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/overview", "")
	if !resp.Metadata.Cached {
		t.Error("second request not served from cache")
	}
	if q.calls != callsAfterFirst {
		t.Errorf("querier called again on cache hit (%d -> %d)", callsAfterFirst, q.calls)
	}
}

func TestSourceNotConfigured(t *testing.T) {
	h := newTestHandler(t, nil)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/overview", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeSourceNotConfigured {
		t.Fatalf("error = %+v, want %s", resp.Error, models.ErrCodeSourceNotConfigured)
	}
}

func TestUpstreamFailureDegrades(t *testing.T) {
	q := &fakeQuerier{err: &datasource.DataSourceError{Source: "ga4", Op: "runReport", Err: context.DeadlineExceeded}}
	h := newTestHandler(t, q)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/overview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 placeholder", rec.Code)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T", resp.Data)
	}
	if data["no_data"] != true {
		t.Error("placeholder missing no_data flag")
	}
	msg, _ := data["message"].(string)
	if !strings.Contains(msg, "ga4") {
		t.Errorf("placeholder message %q does not name the failing source", msg)
	}
}

func TestInsufficientDataCohort(t *testing.T) {
	// One cohort only: retention needs at least two.
	h := newTestHandler(t, &fakeQuerier{rows: map[string][]models.MetricRow{
		"firstSessionDate": {
			{Dimensions: map[string]string{"firstSessionDate": "2026-08-01", "nthDay": "0000"}, Metrics: map[string]float64{"activeUsers": 50}},
		},
	}})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/cohort", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T", resp.Data)
	}
	if data["insufficient_data"] != true {
		t.Errorf("payload = %v, want insufficient_data", data)
	}
}

func TestCorrelationsPanel(t *testing.T) {
	row := func(date, device string, sessions, conversions float64) models.MetricRow {
		return models.MetricRow{
			Dimensions: map[string]string{"date": date, "deviceCategory": device},
			Metrics: map[string]float64{
				"sessions": sessions, "activeUsers": sessions * 0.8,
				"averageSessionDuration": 60, "bounceRate": 0.4,
				"conversions": conversions,
			},
		}
	}
	h := newTestHandler(t, &fakeQuerier{rows: map[string][]models.MetricRow{
		"date": {
			row("2026-08-01", "desktop", 100, 5),
			row("2026-08-01", "mobile", 200, 10),
			row("2026-08-02", "(not set)", 999, 0),
		},
		"userAgeBracket": {
			{Dimensions: map[string]string{"userAgeBracket": "25-34"}, Metrics: map[string]float64{"conversions": 8}},
			{Dimensions: map[string]string{"userAgeBracket": "unknown"}, Metrics: map[string]float64{"conversions": 99}},
		},
	}})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/correlations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	matrix := data["matrix"].(map[string]interface{})
	if got := len(matrix["metrics"].([]interface{})); got != 5 {
		t.Errorf("matrix metrics = %d, want 5", got)
	}
	devices := data["conversions_by_device"].([]interface{})
	if len(devices) != 2 {
		t.Errorf("device groups = %d, want 2 (placeholder dropped)", len(devices))
	}
	ages := data["conversions_by_age"].([]interface{})
	if len(ages) != 1 {
		t.Errorf("age groups = %d, want 1 (unknown dropped)", len(ages))
	}
}

func TestDateValidation(t *testing.T) {
	h := newTestHandler(t, &fakeQuerier{rows: gaRows()})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/overview?start=notadate", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeBadRequest {
		t.Fatalf("error = %+v", resp.Error)
	}

	rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/ga/overview?start=2026-08-10&end=2026-08-01", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d, want 400", rec.Code)
	}
}

func TestWhatIfParams(t *testing.T) {
	h := newTestHandler(t, &fakeQuerier{rows: gaRows()})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/ga/what-if?sessions_delta=50&cr_delta=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	if got := data["scenario_sessions"].(float64); got != 330 {
		t.Errorf("scenario_sessions = %v, want 330", got)
	}

	rec, _ = doRequest(t, h, http.MethodGet, "/api/v1/ga/what-if?sessions_delta=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad delta status = %d, want 400", rec.Code)
	}
}

func TestFlightsRequireDataset(t *testing.T) {
	h := newTestHandler(t, nil)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/flights/kpis", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeNotFound {
		t.Fatalf("error = %+v", resp.Error)
	}
}

func TestInsightsUnconfigured(t *testing.T) {
	h := newTestHandler(t, nil)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/insights/overview",
		`{"instruction":"resume el panel"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeSourceNotConfigured {
		t.Fatalf("error = %+v", resp.Error)
	}
}

func TestInsightsUnknownPanel(t *testing.T) {
	h := newTestHandler(t, nil)
	h.insights = insight.New(config.OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", Endpoint: "http://127.0.0.1:0"})

	rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/insights/nonsense",
		`{"instruction":"hola"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &fakeQuerier{})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	sources := data["sources"].(map[string]interface{})
	if sources["ga"] != true {
		t.Error("ga source not reported up")
	}
	if sources["ads"] != false {
		t.Error("ads source reported up without a client")
	}
}
