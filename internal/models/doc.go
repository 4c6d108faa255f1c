// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package models defines the shared data structures exchanged between
// the data sources, the analytics builders and the HTTP API: metric
// rows returned by upstream queries, the derived funnel, cohort, flow
// and ranking shapes, and the JSON response envelope.
package models
