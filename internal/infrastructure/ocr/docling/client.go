package docling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/infrastructure/resilience"
)

// Client extracts report text through a docling-serve conversion endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 300 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type convertResponse struct {
	Document struct {
		MDContent string `json:"md_content"`
	} `json:"document"`
	Status string `json:"status"`
}

func (c *Client) Extract(ctx context.Context, filename string, data io.Reader) (string, error) {
	// The payload is buffered once so the resilience executor can retry.
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read document bytes: %w", err)
	}

	var response convertResponse
	call := func(callCtx context.Context) error {
		return c.convert(callCtx, filename, raw, &response)
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "docling.convert", call, classifyDoclingError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("docling convert", err)
	}

	text := strings.TrimSpace(response.Document.MDContent)
	if text == "" {
		return "", domain.WrapError(domain.ErrUpstream, "docling convert", fmt.Errorf("empty md_content"))
	}
	return text, nil
}

func (c *Client) convert(ctx context.Context, filename string, raw []byte, out *convertResponse) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	filePart, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := filePart.Write(raw); err != nil {
		return fmt.Errorf("write multipart file: %w", err)
	}
	if err := writer.WriteField("to_formats", "md"); err != nil {
		return fmt.Errorf("write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1alpha/convert/file", &body)
	if err != nil {
		return fmt.Errorf("create convert request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("docling convert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  "convert",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode convert response: %w", err)
	}
	return nil
}
