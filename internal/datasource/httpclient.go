// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/metrics"
)

const (
	maxRetries       = 4
	maxErrorBodySize = 64 * 1024
)

// doWithRetry performs an HTTP request, retrying on 429 and 5xx with
// exponential backoff and honoring Retry-After. The caller owns the
// response body on success. source labels the upstream in logs and
// metrics; build must return a fresh request each attempt so bodies
// can be replayed.
func doWithRetry(ctx context.Context, client *http.Client, source string, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt-1)) * time.Second
			if ra := retryAfter(lastErr); ra > 0 {
				wait = ra
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}
		start := time.Now()
		resp, err := client.Do(req.WithContext(ctx))
		metrics.UpstreamRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			metrics.UpstreamRequests.WithLabelValues(source, "rate_limited").Inc()
			lastErr = &retryableError{
				status:     resp.StatusCode,
				retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				body:       readErrorBody(resp),
			}
			logging.With(source).Warn().
				Int("attempt", attempt+1).
				Msg("rate limited, backing off")
			continue
		case resp.StatusCode >= 500:
			metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
			lastErr = &retryableError{status: resp.StatusCode, body: readErrorBody(resp)}
			continue
		case resp.StatusCode >= 400:
			metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
			body := readErrorBody(resp)
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
		}

		metrics.UpstreamRequests.WithLabelValues(source, "ok").Inc()
		return resp, nil
	}
	return nil, fmt.Errorf("exhausted %d retries: %w", maxRetries, lastErr)
}

type retryableError struct {
	status     int
	retryAfter time.Duration
	body       string
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

func retryAfter(err error) time.Duration {
	if re, ok := err.(*retryableError); ok {
		return re.retryAfter
	}
	return 0
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// readErrorBody drains and closes a failed response's body, capped so
// a misbehaving upstream cannot balloon memory.
func readErrorBody(resp *http.Response) string {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return fmt.Sprintf("(unreadable body: %v)", err)
	}
	return string(data)
}
