package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/infrastructure/resilience"
)

// Decoding settings tuned for deterministic field extraction.
const (
	genTemperature     = 0.1
	genTopK            = 1
	genTopP            = 0.8
	genMaxOutputTokens = 2048
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func New(baseURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Contents         []content      `json:"contents"`
	GenerationConfig generateConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Structure extracts the typed report from raw report text. Model output is
// expected to be a single JSON object; anything around it is stripped.
func (c *Client) Structure(ctx context.Context, text string) (domain.StructuredReport, error) {
	raw, err := c.generate(ctx, buildStructuringPrompt(text))
	if err != nil {
		return domain.StructuredReport{}, err
	}

	var report domain.StructuredReport
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &report); err != nil {
		return domain.StructuredReport{}, domain.WrapError(domain.ErrUpstream, "gemini structure",
			fmt.Errorf("parse report json: %w", err))
	}
	report.Normalize()
	return report, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	request := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generateConfig{
			Temperature:     genTemperature,
			TopK:            genTopK,
			TopP:            genTopP,
			MaxOutputTokens: genMaxOutputTokens,
		},
	}

	var response generateResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, request, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini.generate", call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("gemini generate", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", domain.WrapError(domain.ErrUpstream, "gemini generate", fmt.Errorf("empty candidates"))
	}
	return strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
