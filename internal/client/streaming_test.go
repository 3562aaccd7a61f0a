package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamBody(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, f := range frames {
		fmt.Fprintf(w, "data: %s\n\n", f)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func newTestClient(url string) *Client {
	return New(Options{BaseURL: url, Model: "test-model", MaxTokens: 100})
}

func TestStreamAggregatesFragmentsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamBody(w,
			`{"choices":[{"delta":{"content":"Hel"}}]}`,
			`{"choices":[{"delta":{"content":"lo "}}]}`,
			`{"choices":[{"delta":{"content":"world"}}]}`,
		)
	}))
	defer srv.Close()

	var seen []string
	resp, err := newTestClient(srv.URL).Stream(context.Background(), []Message{{Role: "user", Content: "hi"}}, func(s string) {
		seen = append(seen, s)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", resp.Content)
	assert.Equal(t, []string{"Hel", "lo ", "world"}, seen)
	assert.Equal(t, 3, resp.TokensUsed)
	assert.False(t, resp.UsedFallback)
}

func TestStreamUsageOverridesFragmentCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamBody(w,
			`{"choices":[{"delta":{"content":"a"}}]}`,
			`{"choices":[{"delta":{"content":"b"}}]}`,
			`{"choices":[],"usage":{"total_tokens":57}}`,
		)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Stream(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 57, resp.TokensUsed)
}

func TestStreamSkipsMalformedFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamBody(w,
			`{"choices":[{"delta":{"content":"ok "}}]}`,
			`{not json at all`,
			`{"choices":[{"delta":{"content":"still ok"}}]}`,
		)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Stream(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok still ok", resp.Content)
	assert.Equal(t, 2, resp.TokensUsed)
}

func TestStreamSeparatesReasoning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamBody(w,
			`{"choices":[{"delta":{"content":"<think>hmm"}}]}`,
			`{"choices":[{"delta":{"content":"</think>answer"}}]}`,
		)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Stream(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hmm", resp.Reasoning)
	assert.Equal(t, "answer", resp.Content)
}

func TestStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Stream(context.Background(), nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.True(t, IsRetryableError(err))
}

func TestChatFallsBackOnceOnStreamingFailure(t *testing.T) {
	var streamCalls, completeCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Stream {
			streamCalls.Add(1)
			http.Error(w, "no streaming today", http.StatusInternalServerError)
			return
		}
		completeCalls.Add(1)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"fallback answer"}}],"usage":{"total_tokens":12}}`)
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", resp.Content)
	assert.Equal(t, 12, resp.TokensUsed)
	assert.True(t, resp.UsedFallback)
	assert.Equal(t, int32(1), streamCalls.Load())
	assert.Equal(t, int32(1), completeCalls.Load())
}

func TestChatFallbackFailureIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), nil, nil)
	require.Error(t, err)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	// One streaming attempt plus exactly one fallback, never more.
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatSkipsFallbackWhenCancelled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).Chat(ctx, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
