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
	"strings"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/skyintel/skyintel/internal/cache"
	"github.com/skyintel/skyintel/internal/config"
	"github.com/skyintel/skyintel/internal/models"
)

const adsAPIVersion = "v21"

// AdsClient queries the Google Ads API with GAQL over REST. Geo
// criterion IDs are resolved to display names through an injected LRU
// cache so repeated snapshots do not re-query stable constants.
type AdsClient struct {
	cfg      config.AdsConfig
	client   *http.Client
	tokens   oauth2.TokenSource
	geoNames *cache.LRU
	breaker  *gobreaker.CircuitBreaker[[]adsRow]
}

// NewAdsClient builds a client from the Ads section of the config.
func NewAdsClient(cfg config.AdsConfig, geoNames *cache.LRU) (*AdsClient, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
	}
	return &AdsClient{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		tokens:   oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken}),
		geoNames: geoNames,
		breaker:  newBreaker[[]adsRow]("ads"),
	}, nil
}

// GAQL report templates. Dates are interpolated as 'YYYY-MM-DD'.
const (
	gaqlDaily = `SELECT segments.date, metrics.impressions, metrics.clicks,
		metrics.cost_micros, metrics.conversions
		FROM customer WHERE segments.date BETWEEN '%s' AND '%s'
		ORDER BY segments.date`

	gaqlCampaigns = `SELECT campaign.name, campaign.status, metrics.impressions,
		metrics.clicks, metrics.ctr, metrics.average_cpc, metrics.cost_micros,
		metrics.conversions, metrics.conversions_value
		FROM campaign
		WHERE segments.date BETWEEN '%s' AND '%s' AND campaign.status != 'REMOVED'
		ORDER BY metrics.cost_micros DESC`

	gaqlGeo = `SELECT user_location_view.country_criterion_id,
		user_location_view.resource_name, metrics.impressions, metrics.clicks,
		metrics.cost_micros, metrics.conversions
		FROM user_location_view WHERE segments.date BETWEEN '%s' AND '%s'`

	gaqlDevices = `SELECT segments.device, metrics.impressions, metrics.clicks,
		metrics.cost_micros, metrics.conversions
		FROM customer WHERE segments.date BETWEEN '%s' AND '%s'`

	gaqlAge = `SELECT ad_group_criterion.age_range.type, metrics.impressions,
		metrics.clicks, metrics.cost_micros, metrics.conversions
		FROM age_range_view WHERE segments.date BETWEEN '%s' AND '%s'`

	gaqlGender = `SELECT ad_group_criterion.gender.type, metrics.impressions,
		metrics.clicks, metrics.cost_micros, metrics.conversions
		FROM gender_view WHERE segments.date BETWEEN '%s' AND '%s'`

	gaqlKeywords = `SELECT ad_group_criterion.keyword.text,
		ad_group_criterion.keyword.match_type, metrics.impressions, metrics.clicks,
		metrics.cost_micros, metrics.conversions
		FROM keyword_view WHERE segments.date BETWEEN '%s' AND '%s'
		ORDER BY metrics.clicks DESC LIMIT 100`

	gaqlAdGroups = `SELECT ad_group.name, campaign.name, metrics.impressions,
		metrics.clicks, metrics.cost_micros, metrics.conversions
		FROM ad_group WHERE segments.date BETWEEN '%s' AND '%s'
		ORDER BY metrics.cost_micros DESC LIMIT 100`

	gaqlTotals = `SELECT metrics.impressions, metrics.clicks, metrics.cost_micros,
		metrics.conversions, metrics.conversions_value
		FROM customer WHERE segments.date BETWEEN '%s' AND '%s'`

	gaqlGeoNames = `SELECT geo_target_constant.id, geo_target_constant.name
		FROM geo_target_constant WHERE geo_target_constant.id IN (%s)`
)

type adsRow struct {
	Campaign struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"campaign"`
	AdGroup struct {
		Name string `json:"name"`
	} `json:"adGroup"`
	AdGroupCriterion struct {
		Keyword struct {
			Text      string `json:"text"`
			MatchType string `json:"matchType"`
		} `json:"keyword"`
		AgeRange struct {
			Type string `json:"type"`
		} `json:"ageRange"`
		Gender struct {
			Type string `json:"type"`
		} `json:"gender"`
	} `json:"adGroupCriterion"`
	UserLocationView struct {
		CountryCriterionID json.Number `json:"countryCriterionId"`
		ResourceName       string      `json:"resourceName"`
	} `json:"userLocationView"`
	GeoTargetConstant struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"geoTargetConstant"`
	Segments struct {
		Date   string `json:"date"`
		Device string `json:"device"`
	} `json:"segments"`
	Metrics struct {
		Impressions      json.Number `json:"impressions"`
		Clicks           json.Number `json:"clicks"`
		CostMicros       json.Number `json:"costMicros"`
		Conversions      float64     `json:"conversions"`
		ConversionsValue float64     `json:"conversionsValue"`
		CTR              float64     `json:"ctr"`
		AverageCPC       float64     `json:"averageCpc"`
	} `json:"metrics"`
}

type adsSearchResponse struct {
	Results       []adsRow `json:"results"`
	NextPageToken string   `json:"nextPageToken"`
}

// search runs a GAQL query, following pagination until exhausted.
func (c *AdsClient) search(ctx context.Context, query string) ([]adsRow, error) {
	return c.breaker.Execute(func() ([]adsRow, error) {
		var all []adsRow
		pageToken := ""
		for {
			page, next, err := c.searchPage(ctx, query, pageToken)
			if err != nil {
				return nil, err
			}
			all = append(all, page...)
			if next == "" {
				return all, nil
			}
			pageToken = next
		}
	})
}

func (c *AdsClient) searchPage(ctx context.Context, query, pageToken string) ([]adsRow, string, error) {
	body := map[string]string{"query": query}
	if pageToken != "" {
		body["pageToken"] = pageToken
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, "", fmt.Errorf("fetching ads token: %w", err)
	}
	url := fmt.Sprintf("%s/%s/customers/%s/googleAds:search",
		c.cfg.Endpoint, adsAPIVersion, c.cfg.CustomerID)

	resp, err := doWithRetry(ctx, c.client, "ads", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		token.SetAuthHeader(req)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("developer-token", c.cfg.DeveloperToken)
		if c.cfg.LoginCustomerID != "" {
			req.Header.Set("login-customer-id", c.cfg.LoginCustomerID)
		}
		return req, nil
	})
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var decoded adsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, "", fmt.Errorf("decoding search response: %w", err)
	}
	return decoded.Results, decoded.NextPageToken, nil
}

func (c *AdsClient) report(ctx context.Context, op, tmpl string, r models.DateRange) ([]adsRow, error) {
	query := fmt.Sprintf(tmpl, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	rows, err := c.search(ctx, query)
	if err != nil {
		return nil, &DataSourceError{Source: "ads", Op: op, Err: err}
	}
	return rows, nil
}

func num(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}

// baseMetrics extracts the metric set shared by every report, with
// cost converted from micros and derived ratios zero-guarded.
func baseMetrics(r adsRow) map[string]float64 {
	cost := num(r.Metrics.CostMicros) / 1e6
	clicks := num(r.Metrics.Clicks)
	m := map[string]float64{
		"impressions": num(r.Metrics.Impressions),
		"clicks":      clicks,
		"cost":        cost,
		"conversions": r.Metrics.Conversions,
	}
	if clicks > 0 {
		m["cpc"] = cost / clicks
	}
	if r.Metrics.Conversions > 0 {
		m["cpa"] = cost / r.Metrics.Conversions
	}
	return m
}

// Daily returns per-day totals across the account.
func (c *AdsClient) Daily(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "daily", gaqlDaily, r)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{"date": row.Segments.Date},
			Metrics:    baseMetrics(row),
		})
	}
	return out, nil
}

// Campaigns returns per-campaign performance with derived cost ratios.
func (c *AdsClient) Campaigns(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "campaigns", gaqlCampaigns, r)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		m := baseMetrics(row)
		m["conversions_value"] = row.Metrics.ConversionsValue
		m["ctr"] = row.Metrics.CTR
		if cost := m["cost"]; cost > 0 {
			m["roas"] = row.Metrics.ConversionsValue / cost
		}
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{
				"campaign": row.Campaign.Name,
				"status":   row.Campaign.Status,
			},
			Metrics: m,
		})
	}
	return out, nil
}

// Geo returns per-location performance with criterion IDs resolved to
// display names through the geo-name cache.
func (c *AdsClient) Geo(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "geo", gaqlGeo, r)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool)
	for _, row := range rows {
		id := row.UserLocationView.CountryCriterionID.String()
		if id != "" && id != "0" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	names := c.resolveGeoNames(ctx, ids)

	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		id := row.UserLocationView.CountryCriterionID.String()
		name := names[id]
		if name == "" {
			name = id
		}
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{"location": name, "criterion_id": id},
			Metrics:    baseMetrics(row),
		})
	}
	return out, nil
}

const geoLookupBatch = 100

// resolveGeoNames maps criterion IDs to display names, serving from
// the LRU first and querying geo_target_constant for the remainder in
// batches. Lookup failures leave the ID unresolved rather than failing
// the report.
func (c *AdsClient) resolveGeoNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	var missing []string
	for _, id := range ids {
		if name, ok := c.geoNames.Get(id); ok {
			names[id] = name
		} else {
			missing = append(missing, id)
		}
	}

	for start := 0; start < len(missing); start += geoLookupBatch {
		end := start + geoLookupBatch
		if end > len(missing) {
			end = len(missing)
		}
		query := fmt.Sprintf(gaqlGeoNames, strings.Join(missing[start:end], ", "))
		rows, err := c.search(ctx, query)
		if err != nil {
			return names
		}
		for _, row := range rows {
			id := row.GeoTargetConstant.ID.String()
			names[id] = row.GeoTargetConstant.Name
			c.geoNames.Put(id, row.GeoTargetConstant.Name)
		}
	}
	return names
}

// Devices returns performance split by device category.
func (c *AdsClient) Devices(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "devices", gaqlDevices, r)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{"device": row.Segments.Device},
			Metrics:    baseMetrics(row),
		})
	}
	return out, nil
}

// ageRangeLabels maps API enum names to the buckets the dashboard
// shows.
var ageRangeLabels = map[string]string{
	"AGE_RANGE_18_24":        "18-24",
	"AGE_RANGE_25_34":        "25-34",
	"AGE_RANGE_35_44":        "35-44",
	"AGE_RANGE_45_54":        "45-54",
	"AGE_RANGE_55_64":        "55-64",
	"AGE_RANGE_65_UP":        "65+",
	"AGE_RANGE_UNDETERMINED": "Undetermined",
}

// Age returns performance split by age bucket.
func (c *AdsClient) Age(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "age", gaqlAge, r)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		label := ageRangeLabels[row.AdGroupCriterion.AgeRange.Type]
		if label == "" {
			label = row.AdGroupCriterion.AgeRange.Type
		}
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{"age": label},
			Metrics:    baseMetrics(row),
		})
	}
	return out, nil
}

// Gender returns performance split by gender.
func (c *AdsClient) Gender(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "gender", gaqlGender, r)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{"gender": row.AdGroupCriterion.Gender.Type},
			Metrics:    baseMetrics(row),
		})
	}
	return out, nil
}

// Keywords returns the top keywords by clicks.
func (c *AdsClient) Keywords(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "keywords", gaqlKeywords, r)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{
				"keyword":    row.AdGroupCriterion.Keyword.Text,
				"match_type": row.AdGroupCriterion.Keyword.MatchType,
			},
			Metrics: baseMetrics(row),
		})
	}
	return out, nil
}

// AdGroups returns per-ad-group performance.
func (c *AdsClient) AdGroups(ctx context.Context, r models.DateRange) ([]models.MetricRow, error) {
	rows, err := c.report(ctx, "adgroups", gaqlAdGroups, r)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MetricRow{
			Dimensions: map[string]string{
				"ad_group": row.AdGroup.Name,
				"campaign": row.Campaign.Name,
			},
			Metrics: baseMetrics(row),
		})
	}
	return out, nil
}

// PeriodTotals are account-wide sums for one date range.
type PeriodTotals struct {
	Impressions      float64 `json:"impressions"`
	Clicks           float64 `json:"clicks"`
	Cost             float64 `json:"cost"`
	Conversions      float64 `json:"conversions"`
	ConversionsValue float64 `json:"conversions_value"`
}

// AdsOverview compares the requested period against the preceding one
// of equal length.
type AdsOverview struct {
	Current  PeriodTotals `json:"current"`
	Previous PeriodTotals `json:"previous"`
	// Deltas holds percentage changes per metric; a metric absent from
	// the previous period is omitted rather than reported as infinite.
	Deltas map[string]float64 `json:"deltas"`
}

// Overview fetches totals for the range and its preceding period and
// computes percentage deltas.
func (c *AdsClient) Overview(ctx context.Context, r models.DateRange) (*AdsOverview, error) {
	current, err := c.totals(ctx, r)
	if err != nil {
		return nil, err
	}
	previous, err := c.totals(ctx, r.Previous())
	if err != nil {
		return nil, err
	}

	ov := &AdsOverview{Current: current, Previous: previous, Deltas: make(map[string]float64)}
	pairs := []struct {
		name     string
		cur, prv float64
	}{
		{"impressions", current.Impressions, previous.Impressions},
		{"clicks", current.Clicks, previous.Clicks},
		{"cost", current.Cost, previous.Cost},
		{"conversions", current.Conversions, previous.Conversions},
		{"conversions_value", current.ConversionsValue, previous.ConversionsValue},
	}
	for _, p := range pairs {
		if p.prv != 0 {
			ov.Deltas[p.name] = (p.cur - p.prv) / p.prv * 100
		}
	}
	return ov, nil
}

func (c *AdsClient) totals(ctx context.Context, r models.DateRange) (PeriodTotals, error) {
	rows, err := c.report(ctx, "totals", gaqlTotals, r)
	if err != nil {
		return PeriodTotals{}, err
	}
	var t PeriodTotals
	for _, row := range rows {
		t.Impressions += num(row.Metrics.Impressions)
		t.Clicks += num(row.Metrics.Clicks)
		t.Cost += num(row.Metrics.CostMicros) / 1e6
		t.Conversions += row.Metrics.Conversions
		t.ConversionsValue += row.Metrics.ConversionsValue
	}
	return t, nil
}
