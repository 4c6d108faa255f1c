// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package datasource implements the clients for the external marketing
// data APIs: Google Analytics 4, Google Ads and the Meta Graph API.
// Each client is a thin HTTP layer returning models.MetricRow slices
// or typed snapshots; resilience (retry with backoff, circuit breaker)
// is applied uniformly so panel handlers never talk to an upstream
// directly.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skyintel/skyintel/internal/models"
)

// ErrNotConfigured is returned by a client whose credentials are
// missing from the configuration. The API layer maps it to a
// SOURCE_NOT_CONFIGURED response.
var ErrNotConfigured = errors.New("data source not configured")

// DataSourceError wraps an upstream failure with enough context to log
// and to degrade the affected panel without hiding the cause.
type DataSourceError struct {
	Source     string
	Op         string
	StatusCode int
	Err        error
}

func (e *DataSourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Source, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// QueryRequest describes one tabular analytics query.
type QueryRequest struct {
	Dimensions []string         `json:"dimensions"`
	Metrics    []string         `json:"metrics"`
	Range      models.DateRange `json:"range"`
	// Limit bounds the returned rows; 0 means the source default.
	Limit int `json:"limit,omitempty"`
	// OrderBy optionally names a metric to sort by, descending.
	OrderBy string `json:"order_by,omitempty"`
}

// Validate checks the request is well formed before any network call.
func (q QueryRequest) Validate() error {
	if len(q.Metrics) == 0 {
		return errors.New("query needs at least one metric")
	}
	if q.Range.End.Before(q.Range.Start) {
		return fmt.Errorf("query range end %s before start %s",
			q.Range.End.Format("2006-01-02"), q.Range.Start.Format("2006-01-02"))
	}
	return nil
}

// Querier is the interface the analytics builders and panel handlers
// consume. Implementations return an empty slice and nil error when
// the query matched nothing.
type Querier interface {
	Query(ctx context.Context, req QueryRequest) ([]models.MetricRow, error)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
