// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/skyintel/skyintel/internal/config"
	"github.com/skyintel/skyintel/internal/models"
)

func testRange() models.DateRange {
	start, _ := ParseDate("2026-01-01")
	end, _ := ParseDate("2026-01-31")
	return models.DateRange{Start: start, End: end}
}

func testGA4Client(endpoint string) *GA4Client {
	return &GA4Client{
		cfg: config.GAConfig{
			PropertyID:      "123456",
			CredentialsFile: "unused",
			Endpoint:        endpoint,
			Timeout:         5 * time.Second,
		},
		client:  &http.Client{Timeout: 5 * time.Second},
		tokens:  oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
		breaker: newBreaker[[]models.MetricRow]("ga4-test"),
	}
}

func TestQueryRequestValidate(t *testing.T) {
	r := testRange()
	if err := (QueryRequest{Metrics: []string{"sessions"}, Range: r}).Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	if err := (QueryRequest{Range: r}).Validate(); err == nil {
		t.Error("request without metrics should fail")
	}
	inverted := models.DateRange{Start: r.End, End: r.Start}
	if err := (QueryRequest{Metrics: []string{"sessions"}, Range: inverted}).Validate(); err == nil {
		t.Error("inverted range should fail")
	}
}

func TestGA4QueryFlattensRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"dimensionHeaders": [{"name": "date"}],
			"metricHeaders": [{"name": "sessions"}, {"name": "conversions"}],
			"rows": [
				{"dimensionValues": [{"value": "20260101"}],
				 "metricValues": [{"value": "120"}, {"value": "3"}]},
				{"dimensionValues": [{"value": "20260102"}],
				 "metricValues": [{"value": "not-a-number"}, {"value": "1.5"}]}
			]
		}`))
	}))
	defer srv.Close()

	c := testGA4Client(srv.URL)
	rows, err := c.Query(context.Background(), QueryRequest{
		Dimensions: []string{"date"},
		Metrics:    []string{"sessions", "conversions"},
		Range:      testRange(),
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Dimension("date") != "20260101" || rows[0].Metric("sessions") != 120 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	// Unparseable metric cells coerce to zero instead of failing.
	if rows[1].Metric("sessions") != 0 {
		t.Errorf("unparseable cell = %v, want 0", rows[1].Metric("sessions"))
	}
	if rows[1].Metric("conversions") != 1.5 {
		t.Errorf("conversions = %v, want 1.5", rows[1].Metric("conversions"))
	}
}

func TestGA4QueryEmptyReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dimensionHeaders": [{"name": "date"}], "metricHeaders": [{"name": "sessions"}]}`))
	}))
	defer srv.Close()

	rows, err := testGA4Client(srv.URL).Query(context.Background(), QueryRequest{
		Metrics: []string{"sessions"},
		Range:   testRange(),
	})
	if err != nil {
		t.Fatalf("empty report should not error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestGA4QueryUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "permission denied"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testGA4Client(srv.URL).Query(context.Background(), QueryRequest{
		Metrics: []string{"sessions"},
		Range:   testRange(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var dsErr *DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("error %T is not a DataSourceError", err)
	}
	if dsErr.Source != "ga4" {
		t.Errorf("Source = %q, want ga4", dsErr.Source)
	}
}

func TestDoWithRetryRecoversFromRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := doWithRetry(context.Background(), client, "test", func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	if err != nil {
		t.Fatalf("doWithRetry: %v", err)
	}
	resp.Body.Close()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoWithRetryGivesUpOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	_, err := doWithRetry(context.Background(), client, "test", func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("4xx should not retry, got %d calls", calls)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("3"); got != 3*time.Second {
		t.Errorf("parseRetryAfter(3) = %v", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("parseRetryAfter(empty) = %v", got)
	}
	if got := parseRetryAfter("garbage"); got != 0 {
		t.Errorf("parseRetryAfter(garbage) = %v", got)
	}
}
