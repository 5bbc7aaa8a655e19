package biogpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/infrastructure/resilience"
)

// Client scores report text against a fine-tuned BioGPT classifier hosted
// on the HuggingFace inference API. Labels map 1:1 to BI-RADS categories.
type Client struct {
	baseURL    string
	token      string
	modelRepo  string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func New(baseURL, token, modelRepo string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		modelRepo:  modelRepo,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *Client) Classify(ctx context.Context, input string) (domain.Prediction, error) {
	var scores []labelScore
	call := func(callCtx context.Context) error {
		return c.infer(callCtx, input, &scores)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "biogpt.infer", call, classifyInferenceError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Prediction{}, wrapTemporaryIfNeeded("biogpt infer", err)
	}
	if len(scores) == 0 {
		return domain.Prediction{}, domain.WrapError(domain.ErrUpstream, "biogpt infer", fmt.Errorf("empty score list"))
	}

	probabilities := make(map[string]float64, len(scores))
	top := scores[0]
	for _, s := range scores {
		probabilities[biradsFromLabel(s.Label)] = s.Score
		if s.Score > top.Score {
			top = s
		}
	}

	birads := biradsFromLabel(top.Label)
	labelID, _ := strconv.Atoi(birads)
	return domain.Prediction{
		PredictedBirads: birads,
		LabelID:         labelID,
		Confidence:      top.Score,
		Probabilities:   probabilities,
		ModelVersion:    c.modelRepo,
	}, nil
}

func (c *Client) infer(ctx context.Context, input string, out *[]labelScore) error {
	body, err := json.Marshal(map[string]string{"inputs": input})
	if err != nil {
		return fmt.Errorf("marshal inference request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.modelRepo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("biogpt inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "infer",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}

	// The API nests the score list one level deep for single inputs.
	var nested [][]labelScore
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read inference response: %w", err)
	}
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		*out = nested[0]
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode inference response: %w", err)
	}
	return nil
}

// biradsFromLabel maps classifier labels like "LABEL_4" or "BIRADS_4" to the
// bare category digit.
func biradsFromLabel(label string) string {
	if idx := strings.LastIndex(label, "_"); idx >= 0 {
		return label[idx+1:]
	}
	return label
}
