package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/config"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/metrics"
)

// OpenAIClient implements Completer against an OpenAI-compatible
// chat/completions endpoint.
type OpenAIClient struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
	log        *slog.Logger
}

// NewOpenAIClient creates a client from config. A client built from a
// disabled or keyless config is still usable as a Completer; it reports
// Configured() == false and callers decide how to degrade.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Configured reports whether the backend can be called
func (c *OpenAIClient) Configured() bool {
	return c.cfg.Enabled && c.cfg.APIKey != ""
}

// Complete sends a system instruction and user content to chat/completions
// and returns the first choice's message content.
func (c *OpenAIClient) Complete(ctx context.Context, instruction, content string, opts CompletionOptions) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := c.cfg.Model
	if opts.Model != "" {
		model = opts.Model
	}
	temperature := c.cfg.Temperature
	if opts.Temperature > 0 {
		temperature = float64(opts.Temperature)
	}

	c.log.Info("llm.complete.start",
		"req_id", rid,
		"model", model,
		"temp", temperature,
		"instruction_len", len(instruction),
		"content_len", len(content),
		"json_response", opts.JSONResponse,
	)

	body := map[string]any{
		"model":       model,
		"temperature": temperature,
		"messages": []map[string]any{
			{"role": "system", "content": instruction},
			{"role": "user", "content": content},
		},
	}
	if opts.JSONResponse {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.complete.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.complete.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in completion response")
	}

	result := strings.TrimSpace(cc.Choices[0].Message.Content)

	metrics.RecordCompletionDuration("complete", time.Since(start))
	c.log.Info("llm.complete.ok",
		"req_id", rid,
		"result_len", len(result),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (c *OpenAIClient) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("completion response body close error", "error", cerr)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
