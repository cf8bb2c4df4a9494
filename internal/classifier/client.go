// Package classifier sends one conversation's context to the OpenRouter
// chat-completions API and parses the structured classification it returns.
package classifier

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

	"github.com/arenoe-studio/gmailsense/internal/domain"
)

// RemoteError is returned for a non-200 response from the classification
// endpoint. It is the retryable failure class.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("openrouter API error (%d): %s", e.StatusCode, e.Body)
}

// Input is the per-conversation context sent to the classifier. Body must be
// pre-truncated by the caller; no further validation happens here.
type Input struct {
	Subject string
	From    string
	Date    time.Time
	Body    string
}

// Options configures the OpenRouter client.
type Options struct {
	APIURL  string
	Model   string
	Referer string
	Title   string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client talks to the OpenRouter chat-completions endpoint. It performs no
// retries itself; callers wrap Classify with the retry package.
type Client struct {
	apiKey     string
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a classification client with the given credential and options.
func New(apiKey string, opts Options, logger *slog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     apiKey,
		opts:       opts,
		httpClient: httpClient,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type classificationPayload struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// Classify sends one conversation's context to the remote classifier.
// Transport failures and non-200 statuses are returned as errors (a
// *RemoteError for the latter). A 200 response whose inner payload cannot be
// parsed is NOT an error: the anomaly is logged and the safe-default GENERAL
// classification with zero confidence is returned, so malformed model output
// can never trigger a destructive action.
func (c *Client) Classify(ctx context.Context, in Input) (*domain.Classification, error) {
	reqBody := chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(in)},
		},
		Temperature:    0.1,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.opts.Referer != "" {
		req.Header.Set("HTTP-Referer", c.opts.Referer)
	}
	if c.opts.Title != "" {
		req.Header.Set("X-Title", c.opts.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call openrouter: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var envelope chatResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return nil, fmt.Errorf("response contains no choices: %s", string(respBody))
	}

	content := envelope.Choices[0].Message.Content

	var payload classificationPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		c.logger.Warn("failed to parse classification payload, falling back to GENERAL",
			"content", content, "error", err)
		return &domain.Classification{
			Category:   domain.CategoryGeneral,
			Confidence: 0.0,
			Reason:     "parse error",
		}, nil
	}

	sub := strings.TrimSpace(payload.Subcategory)
	// The output schema offers the literal "null" for no subcategory.
	if strings.EqualFold(sub, "null") {
		sub = ""
	}

	return &domain.Classification{
		Category:    domain.Category(strings.ToUpper(strings.TrimSpace(payload.Category))),
		Subcategory: sub,
		Confidence:  payload.Confidence,
		Reason:      payload.Reason,
	}, nil
}
