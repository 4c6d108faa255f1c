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
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/skyintel/skyintel/internal/config"
)

// MetaClient queries the Meta Graph API for the Facebook page and
// Instagram business account backing the social panels. Calls are
// throttled by a token-bucket limiter so media loops stay inside the
// Graph API rate budget.
type MetaClient struct {
	cfg     config.MetaConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewMetaClient builds a client from the Meta section of the config.
func NewMetaClient(cfg config.MetaConfig) (*MetaClient, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	return &MetaClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: newBreaker[json.RawMessage]("meta"),
	}, nil
}

// get performs one Graph API GET and returns the raw JSON body.
func (c *MetaClient) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.breaker.Execute(func() (json.RawMessage, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if params == nil {
			params = url.Values{}
		}
		params.Set("access_token", c.cfg.AccessToken)
		endpoint := fmt.Sprintf("%s/%s?%s", c.cfg.Endpoint, path, params.Encode())

		resp, err := doWithRetry(ctx, c.client, "meta", func() (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	})
}

// SocialPost is one Facebook post or Instagram media item with its
// engagement counters.
type SocialPost struct {
	ID           string    `json:"id"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	Shares       int       `json:"shares"`
	Impressions  float64   `json:"impressions"`
	Reach        float64   `json:"reach"`
	Interactions float64   `json:"interactions"`
}

type fbPostsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Message     string `json:"message"`
		CreatedTime string `json:"created_time"`
		Likes       struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"likes"`
		Comments struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
		Shares struct {
			Count int `json:"count"`
		} `json:"shares"`
	} `json:"data"`
}

const graphTimeFormat = "2006-01-02T15:04:05-0700"

// FacebookPosts returns the page's recent posts with engagement
// summaries and per-post impression insights.
func (c *MetaClient) FacebookPosts(ctx context.Context, limit int) ([]SocialPost, error) {
	if limit <= 0 {
		limit = 25
	}
	params := url.Values{}
	params.Set("fields", "id,message,created_time,likes.summary(true),comments.summary(true),shares")
	params.Set("limit", strconv.Itoa(limit))
	raw, err := c.get(ctx, c.cfg.PageID+"/posts", params)
	if err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "posts", Err: err}
	}
	var decoded fbPostsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "posts", Err: err}
	}

	posts := make([]SocialPost, 0, len(decoded.Data))
	for _, p := range decoded.Data {
		created, _ := time.Parse(graphTimeFormat, p.CreatedTime)
		post := SocialPost{
			ID:        p.ID,
			Message:   p.Message,
			CreatedAt: created,
			Likes:     p.Likes.Summary.TotalCount,
			Comments:  p.Comments.Summary.TotalCount,
			Shares:    p.Shares.Count,
		}
		post.Impressions = c.postInsight(ctx, p.ID, []string{"post_impressions", "post_impressions_unique"})
		posts = append(posts, post)
	}
	return posts, nil
}

type insightsResponse struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value   json.RawMessage `json:"value"`
			EndTime string          `json:"end_time"`
		} `json:"values"`
	} `json:"data"`
}

// postInsight fetches one metric for an object, trying candidate
// metric names in order. Missing or failed metrics report zero so a
// renamed Graph metric degrades a column, not the panel.
func (c *MetaClient) postInsight(ctx context.Context, objectID string, candidates []string) float64 {
	params := url.Values{}
	params.Set("metric", strings.Join(candidates, ","))
	raw, err := c.get(ctx, objectID+"/insights", params)
	if err != nil {
		return 0
	}
	var decoded insightsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return 0
	}
	return firstInsightValue(decoded, candidates)
}

func firstInsightValue(decoded insightsResponse, candidates []string) float64 {
	byName := make(map[string]float64, len(decoded.Data))
	for _, metric := range decoded.Data {
		if len(metric.Values) == 0 {
			continue
		}
		var v float64
		if err := json.Unmarshal(metric.Values[len(metric.Values)-1].Value, &v); err != nil {
			continue
		}
		byName[metric.Name] = v
	}
	for _, name := range candidates {
		if v, ok := byName[name]; ok {
			return v
		}
	}
	return 0
}

type igMediaResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Caption       string `json:"caption"`
		MediaType     string `json:"media_type"`
		Timestamp     string `json:"timestamp"`
		LikeCount     int    `json:"like_count"`
		CommentsCount int    `json:"comments_count"`
	} `json:"data"`
}

// InstagramMedia returns recent IG media with engagement and insight
// metrics. Requires the Instagram business account ID to be set.
func (c *MetaClient) InstagramMedia(ctx context.Context, limit int) ([]SocialPost, error) {
	if c.cfg.InstagramID == "" {
		return nil, &DataSourceError{Source: "meta", Op: "media", Err: ErrNotConfigured}
	}
	if limit <= 0 {
		limit = 25
	}
	params := url.Values{}
	params.Set("fields", "id,caption,media_type,timestamp,like_count,comments_count")
	params.Set("limit", strconv.Itoa(limit))
	raw, err := c.get(ctx, c.cfg.InstagramID+"/media", params)
	if err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "media", Err: err}
	}
	var decoded igMediaResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "media", Err: err}
	}

	posts := make([]SocialPost, 0, len(decoded.Data))
	for _, m := range decoded.Data {
		created, _ := time.Parse(graphTimeFormat, m.Timestamp)
		post := SocialPost{
			ID:        m.ID,
			Message:   m.Caption,
			CreatedAt: created,
			Likes:     m.LikeCount,
			Comments:  m.CommentsCount,
		}
		post.Impressions = c.postInsight(ctx, m.ID, []string{"impressions", "views"})
		post.Reach = c.postInsight(ctx, m.ID, []string{"reach"})
		post.Interactions = c.postInsight(ctx, m.ID, []string{"total_interactions", "engagement"})
		posts = append(posts, post)
	}
	return posts, nil
}

// FollowerPoint is one day of the IG follower-count series.
type FollowerPoint struct {
	Date  string  `json:"date"`
	Count float64 `json:"count"`
}

// FollowerSeries returns daily IG follower counts for roughly the
// last month (the Graph API caps follower_count at 30 days).
func (c *MetaClient) FollowerSeries(ctx context.Context) ([]FollowerPoint, error) {
	if c.cfg.InstagramID == "" {
		return nil, &DataSourceError{Source: "meta", Op: "followers", Err: ErrNotConfigured}
	}
	params := url.Values{}
	params.Set("metric", "follower_count")
	params.Set("period", "day")
	raw, err := c.get(ctx, c.cfg.InstagramID+"/insights", params)
	if err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "followers", Err: err}
	}
	var decoded insightsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "followers", Err: err}
	}

	var series []FollowerPoint
	for _, metric := range decoded.Data {
		if metric.Name != "follower_count" {
			continue
		}
		for _, v := range metric.Values {
			var count float64
			if err := json.Unmarshal(v.Value, &count); err != nil {
				continue
			}
			date := v.EndTime
			if len(date) >= 10 {
				date = date[:10]
			}
			series = append(series, FollowerPoint{Date: date, Count: count})
		}
	}
	return series, nil
}

// Demography is the IG audience split by gender and age bucket, in
// percentages summing to 100 per axis (0 when the audience is empty).
type Demography struct {
	Genders map[string]float64 `json:"genders"`
	Ages    map[string]float64 `json:"ages"`
}

// AudienceDemography fetches the lifetime gender/age breakdown. Keys
// arrive as "F.25-34" pairs and are split and normalized per axis.
func (c *MetaClient) AudienceDemography(ctx context.Context) (*Demography, error) {
	if c.cfg.InstagramID == "" {
		return nil, &DataSourceError{Source: "meta", Op: "demography", Err: ErrNotConfigured}
	}
	params := url.Values{}
	params.Set("metric", "audience_gender_age")
	params.Set("period", "lifetime")
	raw, err := c.get(ctx, c.cfg.InstagramID+"/insights", params)
	if err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "demography", Err: err}
	}
	var decoded insightsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &DataSourceError{Source: "meta", Op: "demography", Err: err}
	}

	for _, metric := range decoded.Data {
		if metric.Name != "audience_gender_age" || len(metric.Values) == 0 {
			continue
		}
		var buckets map[string]float64
		if err := json.Unmarshal(metric.Values[len(metric.Values)-1].Value, &buckets); err != nil {
			return nil, &DataSourceError{Source: "meta", Op: "demography", Err: err}
		}
		return splitDemography(buckets), nil
	}
	return &Demography{Genders: map[string]float64{}, Ages: map[string]float64{}}, nil
}

// splitDemography turns "G.age" keyed counts into per-axis percentage
// maps.
func splitDemography(buckets map[string]float64) *Demography {
	d := &Demography{
		Genders: make(map[string]float64),
		Ages:    make(map[string]float64),
	}
	var total float64
	for key, count := range buckets {
		gender, age, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		d.Genders[gender] += count
		d.Ages[age] += count
		total += count
	}
	if total > 0 {
		for k, v := range d.Genders {
			d.Genders[k] = v / total * 100
		}
		for k, v := range d.Ages {
			d.Ages[k] = v / total * 100
		}
	}
	return d
}
