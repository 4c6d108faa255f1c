// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package analytics contains the builders that turn raw metric rows
// into the derived shapes the dashboard panels render: funnels,
// retention matrices, flow graphs, rankings, time-series
// decompositions and opportunity filters. Builders are pure given
// their inputs; upstream access happens through datasource.Querier
// injected by the caller.
package analytics

import "errors"

// ErrInsufficientData is returned when a builder cannot produce a
// meaningful result from the rows it was given, such as a retention
// pivot with fewer than two rows or a series too short to decompose.
// Callers branch with errors.Is and render the panel's insufficient
// data message.
var ErrInsufficientData = errors.New("insufficient data")
