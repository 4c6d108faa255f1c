// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/skyintel/skyintel/internal/logging"
)

// HTTPService wraps an http.Server as a suture service: Serve blocks
// until the listener fails or the context is canceled, then shuts the
// server down gracefully.
type HTTPService struct {
	Server          *http.Server
	ShutdownTimeout time.Duration
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.With("http").Info().Str("addr", s.Server.Addr).Msg("listening")
		errCh <- s.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		timeout := s.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.Server.Shutdown(shutdownCtx); err != nil {
			logging.With("http").Error().Err(err).Msg("graceful shutdown failed")
			return err
		}
		return ctx.Err()
	}
}

func (s *HTTPService) String() string { return "http-server" }
