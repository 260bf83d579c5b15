package breakdown

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brainpace/brainpace/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

var errNoContent = errors.New("response has no message content")

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	maxSteps int
	client   *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

// NewClient constructs a client from the AI configuration.
func NewClient(cfg config.AIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAITimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultAIBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = config.DefaultAIModel
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    model,
		maxSteps: cfg.MaxSteps,
		client:   &http.Client{Timeout: timeout},
	}
}

// Breakdown asks the model for steps. Failures are reported as a Kind and logged.
func (c *Client) Breakdown(ctx context.Context, req Request) Result {
	if c == nil {
		return failed(KindUnavailable, Usage{})
	}
	if ctx == nil {
		ctx = context.Background()
	}
	content, usage, err := c.complete(ctx, req)
	if errors.Is(err, errNoContent) {
		log.WithField("model", c.model).Warn("breakdown: reply held no message content")
		return failed(KindMalformed, usage)
	}
	if err != nil {
		log.WithError(err).WithField("model", c.model).Warn("breakdown: model call failed")
		return failed(KindUnavailable, usage)
	}
	steps := Normalize(content, c.maxSteps)
	if len(steps) == 0 {
		log.WithField("model", c.model).Warn("breakdown: reply held no usable steps")
		return failed(KindMalformed, usage)
	}
	return Result{Steps: steps, Usage: usage}
}

func (c *Client) complete(ctx context.Context, req Request) (string, Usage, error) {
	usage := Usage{Model: c.model}
	maxSteps := c.maxSteps
	if maxSteps <= 0 || maxSteps > DefaultMaxSteps {
		maxSteps = DefaultMaxSteps
	}
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req, maxSteps)},
		},
		Temperature: 0.4,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", usage, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", usage, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	usage.Latency = time.Since(start)
	if err != nil {
		return "", usage, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("breakdown: close response body failed")
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	usage.Latency = time.Since(start)
	if err != nil {
		return "", usage, fmt.Errorf("read response: %w", err)
	}
	if model := gjson.GetBytes(raw, "model").String(); model != "" {
		usage.Model = model
	}
	usage.PromptTokens = gjson.GetBytes(raw, "usage.prompt_tokens").Int()
	usage.CompletionTokens = gjson.GetBytes(raw, "usage.completion_tokens").Int()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", usage, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, gjson.GetBytes(raw, "error.message").String())
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return "", usage, errNoContent
	}
	log.WithFields(log.Fields{
		"model":   usage.Model,
		"latency": usage.Latency.String(),
		"tokens":  usage.PromptTokens + usage.CompletionTokens,
	}).Debug("breakdown: model replied")
	return content.String(), usage, nil
}
