// Package client talks to an OpenAI-compatible chat completions endpoint.
// It aggregates streamed responses, falls back to a non-streaming request
// when streaming fails, and parses tool invocations out of model text.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pointer/internal/logging"
)

// Message is one chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the aggregated result of one model call.
type Response struct {
	// Content is the final answer with any reasoning section removed.
	Content string
	// Reasoning holds the text between reasoning markers, if any.
	Reasoning string
	// TokensUsed is the endpoint-reported total when available, otherwise a
	// fragment-count estimate from the stream.
	TokensUsed int
	// UsedFallback records that the non-streaming path produced this
	// response after a streaming failure.
	UsedFallback bool
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client is a thin HTTP client for a chat completions endpoint.
type Client struct {
	opts Options
	http *http.Client
}

// New creates a Client. BaseURL is the server root, e.g.
// "http://localhost:1234"; the completions path is appended internally.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.opts.Model
}

// SetModel changes the model used for subsequent calls.
func (c *Client) SetModel(name string) {
	c.opts.Model = name
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type usage struct {
	TotalTokens int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *usage `json:"usage"`
}

func (c *Client) endpoint() string {
	return strings.TrimRight(c.opts.BaseURL, "/") + "/v1/chat/completions"
}

func (c *Client) newRequest(ctx context.Context, messages []Message, stream bool) (*http.Request, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}
	return req, nil
}

// Complete performs a single non-streaming completion.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Response, error) {
	req, err := c.newRequest(ctx, messages, false)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	out := &Response{Content: parsed.Choices[0].Message.Content}
	if parsed.Usage != nil {
		out.TokensUsed = parsed.Usage.TotalTokens
	}
	out.Reasoning, out.Content = SplitReasoning(out.Content)

	logging.Debug("completion finished", "tokens", out.TokensUsed, "chars", len(out.Content))
	return out, nil
}

// Chat is the main entry point for a model call. It streams first and, on
// any streaming failure, makes exactly one non-streaming attempt. An error
// from that single fallback is final.
func (c *Client) Chat(ctx context.Context, messages []Message, onFragment func(string)) (*Response, error) {
	resp, err := c.Stream(ctx, messages, onFragment)
	if err == nil {
		return resp, nil
	}

	// A cancelled context is not a streaming failure; the fallback request
	// would be dead on arrival anyway.
	if ctx.Err() != nil {
		return nil, err
	}

	logging.Warn("streaming failed, trying non-streaming fallback", "error", err)

	resp, fbErr := c.Complete(ctx, messages)
	if fbErr != nil {
		return nil, fmt.Errorf("fallback after streaming failure: %w", fbErr)
	}
	resp.UsedFallback = true
	return resp, nil
}
