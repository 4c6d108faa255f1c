// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

package validation

import (
	"strings"
	"testing"
)

type sampleParams struct {
	Limit int    `validate:"min=1,max=100"`
	Panel string `validate:"required"`
}

func TestStructValid(t *testing.T) {
	if err := Struct(sampleParams{Limit: 10, Panel: "overview"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
}

func TestStructNamesFailingField(t *testing.T) {
	err := Struct(sampleParams{Limit: 500, Panel: "overview"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "Limit") {
		t.Errorf("error should name the field, got %v", err)
	}
}
