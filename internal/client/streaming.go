package client

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"

	"pointer/internal/logging"
)

// streamFrame is one SSE data payload from the endpoint.
type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *usage `json:"usage"`
}

// streamDone is the sentinel payload that terminates a stream.
const streamDone = "[DONE]"

// scanBufSize caps a single SSE line. Delta frames are small, but a model
// can emit a long line inside one fragment.
const scanBufSize = 1024 * 1024

// Stream performs a streaming completion and aggregates the fragments into
// one Response. onFragment, when non-nil, observes each content fragment in
// arrival order.
//
// Token accounting: each content-bearing frame counts as one token unless
// the endpoint reports usage.total_tokens, which is authoritative. Frames
// that fail to decode are skipped; the stream continues.
func (c *Client) Stream(ctx context.Context, messages []Message, onFragment func(string)) (*Response, error) {
	req, err := c.newRequest(ctx, messages, true)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp)
	}

	var (
		content     strings.Builder
		fragments   int
		usageTokens = -1
	)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == streamDone {
			break
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			logging.Debug("skipping malformed stream frame", "error", err)
			continue
		}
		if frame.Usage != nil {
			usageTokens = frame.Usage.TotalTokens
		}
		if len(frame.Choices) == 0 {
			continue
		}
		fragment := frame.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}

		content.WriteString(fragment)
		fragments++
		if onFragment != nil {
			onFragment(fragment)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &NetworkError{Err: err}
	}

	out := &Response{TokensUsed: fragments}
	if usageTokens >= 0 {
		out.TokensUsed = usageTokens
	}
	out.Reasoning, out.Content = SplitReasoning(content.String())

	logging.Debug("stream finished", "fragments", fragments, "tokens", out.TokensUsed)
	return out, nil
}
