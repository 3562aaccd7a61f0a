package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointer/internal/chat"
	"pointer/internal/client"
	"pointer/internal/config"
	"pointer/internal/tools"
)

// scriptedClient returns canned responses in order and records every call.
type scriptedClient struct {
	responses []*client.Response
	errs      []error
	calls     [][]client.Message
}

func (c *scriptedClient) Chat(ctx context.Context, messages []client.Message, onFragment func(string)) (*client.Response, error) {
	i := len(c.calls)
	c.calls = append(c.calls, messages)
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i >= len(c.responses) {
		return &client.Response{Content: "done"}, nil
	}
	return c.responses[i], nil
}

// recordingTool logs its invocations in order.
type recordingTool struct {
	name string
	log  *[]string
}

func (t recordingTool) Name() string                  { return t.name }
func (t recordingTool) Description() string           { return "records calls" }
func (t recordingTool) Validate(map[string]any) error { return nil }
func (t recordingTool) Execute(_ context.Context, args map[string]any) (tools.ToolResult, error) {
	label := t.name
	if v, ok := args["label"].(string); ok {
		label += ":" + v
	}
	*t.log = append(*t.log, label)
	return tools.NewSuccessResult("ok from " + t.name), nil
}

func toolBlock(name, label string) string {
	return fmt.Sprintf("```tool\nname: %s\nargs:\n  label: %q\n```\n", name, label)
}

func newTestAgent(t *testing.T, mc ModelClient, auto bool) (*Agent, *[]string) {
	t.Helper()

	var log []string
	registry := tools.NewRegistry()
	registry.MustRegister(recordingTool{name: "alpha", log: &log})
	registry.MustRegister(recordingTool{name: "beta", log: &log})

	store, err := chat.NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Mode.AutoRunTools = auto
	cfg.Session.HistoryWindow = 10

	return New(mc, registry, nil, store, cfg), &log
}

func TestTurnExecutesValidBlocksInOrder(t *testing.T) {
	mc := &scriptedClient{responses: []*client.Response{
		{
			Content: "Running tools.\n" +
				toolBlock("alpha", "first") +
				"```tool\nargs:\n  orphan: true\n```\n" + // no name, dropped
				toolBlock("beta", "second"),
			TokensUsed: 12,
		},
		{Content: "All done.", TokensUsed: 4},
	}}

	agent, log := newTestAgent(t, mc, true)
	result, err := agent.ProcessMessage(context.Background(), "do the thing")
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha:first", "beta:second"}, *log)
	require.Len(t, result.Executions, 2)
	assert.Equal(t, "All done.", result.FollowUp)
	assert.Len(t, mc.calls, 2)
}

func TestManualDeclineAbortsBatch(t *testing.T) {
	mc := &scriptedClient{responses: []*client.Response{
		{Content: toolBlock("alpha", "x") + toolBlock("beta", "y"), TokensUsed: 8},
	}}

	agent, log := newTestAgent(t, mc, false)
	agent.Approver = func(calls []client.ToolCall) bool { return false }

	result, err := agent.ProcessMessage(context.Background(), "try it")
	require.NoError(t, err)

	assert.True(t, result.Declined)
	assert.Empty(t, *log, "no tool may run after a decline")
	assert.Empty(t, result.Executions)
	assert.Len(t, mc.calls, 1, "a declined batch gets no follow-up")
}

func TestManualApproveRunsBatch(t *testing.T) {
	mc := &scriptedClient{responses: []*client.Response{
		{Content: toolBlock("alpha", "x"), TokensUsed: 3},
		{Content: "finished", TokensUsed: 2},
	}}

	agent, log := newTestAgent(t, mc, false)
	var seen []client.ToolCall
	agent.Approver = func(calls []client.ToolCall) bool {
		seen = calls
		return true
	}

	result, err := agent.ProcessMessage(context.Background(), "go")
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, "alpha", seen[0].Name)
	assert.Equal(t, []string{"alpha:x"}, *log)
	assert.False(t, result.Declined)
}

func TestTokenTotalMatchesAppendedMessages(t *testing.T) {
	mc := &scriptedClient{responses: []*client.Response{
		{Content: toolBlock("alpha", "x"), TokensUsed: 10},
		{Content: "follow-up text", TokensUsed: 6},
	}}

	agent, _ := newTestAgent(t, mc, true)
	_, err := agent.ProcessMessage(context.Background(), "hello")
	require.NoError(t, err)

	session := agent.store.Active()
	require.NotNil(t, session)

	sum := 0
	for _, m := range session.History() {
		sum += m.TokensUsed
	}
	assert.Equal(t, 16, session.Tokens())
	assert.Equal(t, session.Tokens(), sum)
}

func TestModelFailureLeavesSessionUntouched(t *testing.T) {
	mc := &scriptedClient{errs: []error{errors.New("connection refused")}}

	agent, _ := newTestAgent(t, mc, true)
	_, err := agent.ProcessMessage(context.Background(), "hello")
	require.Error(t, err)

	session := agent.store.Active()
	require.NotNil(t, session)
	assert.Zero(t, session.Len(), "a failed turn must not append messages")
	assert.Zero(t, session.Tokens())
}

func TestFollowUpFailureKeepsFirstAppend(t *testing.T) {
	mc := &scriptedClient{
		responses: []*client.Response{
			{Content: toolBlock("alpha", "x"), TokensUsed: 5},
			nil,
		},
		errs: []error{nil, errors.New("timeout")},
	}

	agent, _ := newTestAgent(t, mc, true)
	_, err := agent.ProcessMessage(context.Background(), "hello")
	require.Error(t, err)

	session := agent.store.Active()
	require.Equal(t, 2, session.Len(), "user and first assistant message stay")
	assert.Equal(t, 5, session.Tokens())
}

func TestAtMostOneFollowUpPass(t *testing.T) {
	// The follow-up response contains more tool calls; they run, but no
	// third model call is made.
	mc := &scriptedClient{responses: []*client.Response{
		{Content: toolBlock("alpha", "one"), TokensUsed: 3},
		{Content: toolBlock("beta", "two"), TokensUsed: 3},
	}}

	agent, log := newTestAgent(t, mc, true)
	result, err := agent.ProcessMessage(context.Background(), "chain")
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha:one", "beta:two"}, *log)
	assert.Len(t, mc.calls, 2, "exactly one follow-up model call")
	assert.Len(t, result.Executions, 2)
}

func TestPlainResponseSkipsDispatch(t *testing.T) {
	mc := &scriptedClient{responses: []*client.Response{
		{Content: "just an answer, no calls", TokensUsed: 2},
	}}

	agent, log := newTestAgent(t, mc, true)
	result, err := agent.ProcessMessage(context.Background(), "question")
	require.NoError(t, err)

	assert.Empty(t, *log)
	assert.Empty(t, result.Executions)
	assert.Len(t, mc.calls, 1)
	assert.Equal(t, 2, agent.store.Active().Len())
}

func TestDryRunSkipsExecution(t *testing.T) {
	mc := &scriptedClient{responses: []*client.Response{
		{Content: toolBlock("alpha", "x"), TokensUsed: 3},
	}}

	agent, log := newTestAgent(t, mc, true)
	agent.cfg.Mode.DryRun = true

	result, err := agent.ProcessMessage(context.Background(), "pretend")
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Empty(t, *log)
	assert.Len(t, mc.calls, 1)
}
