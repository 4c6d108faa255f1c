// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints and cross-field consistency.
// Missing upstream credentials are deliberately not an error: each
// source degrades to a SOURCE_NOT_CONFIGURED response instead of
// preventing startup.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("config field %s failed %s validation (value %v)",
				ve.Namespace(), ve.Tag(), ve.Value())
		}
		return fmt.Errorf("config validation: %w", err)
	}

	if _, err := c.Insights.ParseFunnelSteps(); err != nil {
		return fmt.Errorf("config insights.funnel_steps: %w", err)
	}

	if c.Ads.Configured() && len(c.Ads.CustomerID) != 10 {
		return fmt.Errorf("config ads.customer_id must be 10 digits without dashes, got %q", c.Ads.CustomerID)
	}
	return nil
}
