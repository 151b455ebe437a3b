package ollama

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

	"github.com/honeycarbs/tenuretrack/pkg/ctxutil"
)

const (
	defaultBaseURL    = "http://localhost:11434"
	defaultModel      = "gemma3:12b"
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
	generatePath      = "/api/generate"
)

// Config defines text-generation client settings
type Config struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	MaxRetries int
	RetryDelay time.Duration
}

// Client calls a local Ollama generation endpoint
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewClient instantiates a generation client
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("ollama: base url %q must be http(s)", baseURL)
	}
	// accept a full endpoint URL as well as the server origin
	baseURL = strings.TrimSuffix(baseURL, generatePath)

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleep:      ctxutil.Sleep,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Generate sends a non-streaming prompt and returns the generated text.
// Transport failures, non-2xx responses and undecodable envelopes are
// retried up to MaxRetries attempts with a fixed delay between them.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("ollama: client is nil")
	}

	payload, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}

	var errs []error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		text, err := c.generateOnce(ctx, payload)
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("attempt %d/%d: %w", attempt, c.maxRetries, err))

		if ctx.Err() != nil {
			break
		}
		if attempt < c.maxRetries {
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}

	return "", fmt.Errorf("ollama: generate failed: %w", errors.Join(errs...))
}

func (c *Client) generateOnce(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return out.Response, nil
}
