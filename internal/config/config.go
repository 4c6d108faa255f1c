// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package config loads and validates the server configuration. Values
// are layered with koanf: struct defaults first, then an optional YAML
// file, then SKYINTEL_-prefixed environment variables, so deployments
// can override any single key without a full config file.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the SkyIntel server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Cache    CacheConfig    `koanf:"cache"`
	GA       GAConfig       `koanf:"ga"`
	Ads      AdsConfig      `koanf:"ads"`
	Meta     MetaConfig     `koanf:"meta"`
	OpenAI   OpenAIConfig   `koanf:"openai"`
	Flights  FlightsConfig  `koanf:"flights"`
	Insights InsightsConfig `koanf:"insights"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// CORSOrigins lists allowed origins for the dashboard frontend.
	CORSOrigins []string `koanf:"cors_origins"`
	// RateLimit is the per-client request budget per minute.
	RateLimit int `koanf:"rate_limit"`
}

// LoggingConfig mirrors logging.Config for koanf unmarshalling.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig controls the shared query result cache.
type CacheConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// GAConfig holds Google Analytics 4 Data API settings. The source is
// considered configured when both PropertyID and CredentialsFile are
// set.
type GAConfig struct {
	PropertyID      string        `koanf:"property_id"`
	CredentialsFile string        `koanf:"credentials_file"`
	Endpoint        string        `koanf:"endpoint"`
	Timeout         time.Duration `koanf:"timeout"`
}

// Configured reports whether the GA4 source can be used.
func (c GAConfig) Configured() bool {
	return c.PropertyID != "" && c.CredentialsFile != ""
}

// AdsConfig holds Google Ads API settings. All five credential fields
// are required for the source to be considered configured.
type AdsConfig struct {
	DeveloperToken string `koanf:"developer_token"`
	ClientID       string `koanf:"client_id"`
	ClientSecret   string `koanf:"client_secret"`
	RefreshToken   string `koanf:"refresh_token"`
	CustomerID     string `koanf:"customer_id"`
	// LoginCustomerID is the manager account, optional.
	LoginCustomerID string        `koanf:"login_customer_id"`
	Endpoint        string        `koanf:"endpoint"`
	Timeout         time.Duration `koanf:"timeout"`
	// FetchWorkers bounds the concurrent report fetches in a snapshot.
	FetchWorkers int `koanf:"fetch_workers" validate:"min=1,max=32"`
	// GeoCacheSize bounds the geo target constant name cache.
	GeoCacheSize int `koanf:"geo_cache_size" validate:"min=1"`
}

// Configured reports whether the Google Ads source can be used.
func (c AdsConfig) Configured() bool {
	return c.DeveloperToken != "" && c.ClientID != "" && c.ClientSecret != "" &&
		c.RefreshToken != "" && c.CustomerID != ""
}

// MetaConfig holds Meta Graph API settings for the social panels.
type MetaConfig struct {
	AccessToken string        `koanf:"access_token"`
	PageID      string        `koanf:"page_id"`
	InstagramID string        `koanf:"instagram_id"`
	Endpoint    string        `koanf:"endpoint"`
	Timeout     time.Duration `koanf:"timeout"`
	// RequestsPerSecond throttles Graph API calls.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// Configured reports whether the Meta source can be used.
func (c MetaConfig) Configured() bool {
	return c.AccessToken != "" && c.PageID != ""
}

// OpenAIConfig holds settings for the insight generator.
type OpenAIConfig struct {
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Endpoint    string        `koanf:"endpoint"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`
}

// Configured reports whether insight generation can be used.
func (c OpenAIConfig) Configured() bool {
	return c.APIKey != ""
}

// FlightsConfig points at the operations CSV exports.
type FlightsConfig struct {
	// Dir is scanned for sales CSV files at request time.
	Dir string `koanf:"dir"`
}

// Configured reports whether flight operations data is available.
func (c FlightsConfig) Configured() bool {
	return c.Dir != ""
}

// InsightsConfig tunes the analytics builders.
type InsightsConfig struct {
	// FunnelSteps overrides the default conversion funnel definition,
	// formatted as "Label=event_name" entries.
	FunnelSteps []string `koanf:"funnel_steps"`
	// CohortMaxRows and CohortMaxCols bound the retention pivot.
	CohortMaxRows int `koanf:"cohort_max_rows" validate:"min=1"`
	CohortMaxCols int `koanf:"cohort_max_cols" validate:"min=1"`
	// FlowEvents is the allow-list of destination events in the
	// traffic flow panel.
	FlowEvents []string `koanf:"flow_events"`
	// TopN is the row limit for ranking panels.
	TopN int `koanf:"top_n" validate:"min=1"`
}

// Default returns the built-in configuration used as the koanf base
// layer.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			TTL:             5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		GA: GAConfig{
			Endpoint: "https://analyticsdata.googleapis.com",
			Timeout:  30 * time.Second,
		},
		Ads: AdsConfig{
			Endpoint:     "https://googleads.googleapis.com",
			Timeout:      45 * time.Second,
			FetchWorkers: 6,
			GeoCacheSize: 512,
		},
		Meta: MetaConfig{
			Endpoint:          "https://graph.facebook.com/v19.0",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 4,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Endpoint:    "https://api.openai.com/v1",
			Timeout:     60 * time.Second,
			MaxTokens:   700,
			Temperature: 0.3,
		},
		Insights: InsightsConfig{
			CohortMaxRows: 15,
			CohortMaxCols: 15,
			FlowEvents:    []string{"page_view", "view_item", "begin_checkout", "purchase"},
			TopN:          10,
		},
	}
}

// ParseFunnelSteps converts "Label=event" entries into ordered pairs.
func (c InsightsConfig) ParseFunnelSteps() ([][2]string, error) {
	steps := make([][2]string, 0, len(c.FunnelSteps))
	for _, raw := range c.FunnelSteps {
		label, event, ok := strings.Cut(raw, "=")
		if !ok || label == "" || event == "" {
			return nil, fmt.Errorf("invalid funnel step %q, want Label=event", raw)
		}
		steps = append(steps, [2]string{label, event})
	}
	return steps, nil
}
