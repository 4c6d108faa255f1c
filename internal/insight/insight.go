// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package insight generates the short prose analyses shown under each
// dashboard panel. It calls the OpenAI chat completions API with a
// fixed analyst persona; any failure degrades to a readable fallback
// message so a panel never breaks because the language model did.
package insight

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/skyintel/skyintel/internal/config"
	"github.com/skyintel/skyintel/internal/logging"
	"github.com/skyintel/skyintel/internal/metrics"
)

// systemPersona keeps the generated analyses consistent across
// panels. The dashboard audience is Spanish-speaking marketing staff.
const systemPersona = "Eres un analista senior de datos de marketing digital. " +
	"Interpretas métricas de Google Analytics, Google Ads y redes sociales para " +
	"un equipo de marketing hispanohablante. Respondes siempre en español, en " +
	"tono profesional y directo, con conclusiones accionables y sin inventar " +
	"datos que no estén en el contexto."

// Requester issues chat-completion calls. The zero value is unusable;
// construct with New.
type Requester struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

// New builds a requester from the OpenAI section of the config.
func New(cfg config.OpenAIConfig) *Requester {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Requester{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

// Configured reports whether insight generation is available.
func (r *Requester) Configured() bool {
	return r != nil && r.cfg.Configured()
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Request produces an analysis for one panel. contextText is the
// serialized panel data, instruction the question to answer. The
// return value is always displayable prose: on any failure it is a
// Spanish fallback sentence embedding the cause, never an error.
// panel only labels logs and metrics.
func (r *Requester) Request(ctx context.Context, panel, instruction, contextText string) string {
	text, err := r.complete(ctx, instruction, contextText)
	if err != nil {
		logging.With("insight").Error().Err(err).Str("panel", panel).Msg("insight generation failed")
		metrics.InsightRequests.WithLabelValues(panel, "error").Inc()
		return fmt.Sprintf("No se pudo generar el análisis automático (%v). "+
			"Revisa la configuración de la integración de IA e inténtalo de nuevo.", err)
	}
	metrics.InsightRequests.WithLabelValues(panel, "ok").Inc()
	return text
}

func (r *Requester) complete(ctx context.Context, instruction, contextText string) (string, error) {
	if !r.Configured() {
		return "", fmt.Errorf("openai api key not configured")
	}

	user := contextText
	if user != "" {
		user += "\n\n"
	}
	user += "Pregunta/Tarea: " + instruction

	payload, err := json.Marshal(chatRequest{
		Model: r.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPersona},
			{Role: "user", Content: user},
		},
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.cfg.Endpoint+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("openai", "error").Inc()
		return "", err
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.UpstreamRequests.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("decoding completion: %w", err)
	}
	if decoded.Error != nil {
		metrics.UpstreamRequests.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("api error: %s", decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 {
		metrics.UpstreamRequests.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("empty completion")
	}
	metrics.UpstreamRequests.WithLabelValues("openai", "ok").Inc()
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}
