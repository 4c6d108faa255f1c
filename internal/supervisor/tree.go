// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package supervisor builds the suture supervision tree that keeps the
// long-running services (the HTTP server, the cache sweeper) restarted
// on failure. Supervision events are routed into the shared zerolog
// stream through the slog adapter.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/skyintel/skyintel/internal/logging"
)

// Tree is the root supervisor plus the API layer beneath it.
type Tree struct {
	root *suture.Supervisor
	api  *suture.Supervisor
}

// NewTree builds the two-level supervision tree.
func NewTree() *Tree {
	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()

	root := suture.New("skyintel", suture.Spec{
		EventHook:        hook,
		FailureDecay:     30,
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
	})
	api := suture.New("api", suture.Spec{EventHook: hook})
	root.Add(api)
	return &Tree{root: root, api: api}
}

// AddAPIService registers a service under the API layer.
func (t *Tree) AddAPIService(s suture.Service) {
	t.api.Add(s)
}

// Serve runs the tree until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
