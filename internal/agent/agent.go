// Package agent drives one conversation turn end to end: prompt assembly,
// model call, tool-call parsing, policy-gated dispatch, and the single
// follow-up pass.
package agent

import (
	"context"
	"fmt"
	"strings"

	"pointer/internal/chat"
	"pointer/internal/client"
	"pointer/internal/config"
	codectx "pointer/internal/context"
	"pointer/internal/logging"
	"pointer/internal/tools"
)

// ModelClient is the slice of the API client the agent needs.
type ModelClient interface {
	Chat(ctx context.Context, messages []client.Message, onFragment func(string)) (*client.Response, error)
}

// ToolExecution pairs an invocation with its result.
type ToolExecution struct {
	Call   client.ToolCall
	Result tools.ToolResult
}

// TurnResult is everything one user turn produced.
type TurnResult struct {
	Response   string
	Reasoning  string
	Executions []ToolExecution
	FollowUp   string
	Declined   bool
	DryRun     bool
	TokensUsed int
}

// Agent owns the turn state machine. Exactly one turn runs at a time; the
// session and context cache are owned by the executing turn, so no locking
// happens here.
type Agent struct {
	client   ModelClient
	registry *tools.Registry
	cache    *codectx.Cache
	store    *chat.Store
	cfg      *config.Config

	// Approver decides whether a pending batch runs in manual mode. A nil
	// Approver declines everything.
	Approver func(calls []client.ToolCall) bool

	// OnFragment receives streamed response text as it arrives.
	OnFragment func(text string)

	// OnToolResult is called after each tool finishes.
	OnToolResult func(call client.ToolCall, result tools.ToolResult)
}

// New creates an Agent.
func New(mc ModelClient, registry *tools.Registry, cache *codectx.Cache, store *chat.Store, cfg *config.Config) *Agent {
	return &Agent{
		client:   mc,
		registry: registry,
		cache:    cache,
		store:    store,
		cfg:      cfg,
	}
}

func (a *Agent) session() *chat.Session {
	if a.store.Active() == nil {
		a.store.New("")
	}
	return a.store.Active()
}

// ProcessMessage runs one user turn. On a model-call failure the session is
// left exactly as of the last successful append.
func (a *Agent) ProcessMessage(ctx context.Context, input string) (*TurnResult, error) {
	if a.cache != nil {
		a.cache.RefreshIfDue()
	}
	session := a.session()

	messages := a.buildMessages(session, input)
	resp, err := a.client.Chat(ctx, messages, a.OnFragment)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	result := &TurnResult{
		Response:   resp.Content,
		Reasoning:  resp.Reasoning,
		TokensUsed: resp.TokensUsed,
	}

	// The turn's messages are appended together once the model call has
	// succeeded, keeping total_tokens in step with the history.
	session.Append(chat.RoleUser, input, 0)
	session.Append(chat.RoleAssistant, resp.Content, resp.TokensUsed)

	calls := client.ParseToolCalls(resp.Content)
	if len(calls) == 0 {
		return result, nil
	}

	if a.cfg.Mode.DryRun {
		result.DryRun = true
		return result, nil
	}

	if !a.approved(calls) {
		logging.Info("tool batch declined", "calls", len(calls))
		result.Declined = true
		return result, nil
	}

	result.Executions = a.executeBatch(ctx, calls)

	// One chained follow-up pass, never more.
	followUp, followUpTokens, err := a.followUp(ctx, session, result.Executions)
	if err != nil {
		return result, fmt.Errorf("follow-up call failed: %w", err)
	}
	result.FollowUp = followUp
	result.TokensUsed += followUpTokens
	session.Append(chat.RoleAssistant, followUp, followUpTokens)

	if followUpCalls := client.ParseToolCalls(followUp); len(followUpCalls) > 0 {
		if a.approved(followUpCalls) {
			result.Executions = append(result.Executions, a.executeBatch(ctx, followUpCalls)...)
		} else {
			result.Declined = true
		}
	}

	return result, nil
}

// approved applies the execution policy: auto-run mode invokes immediately,
// manual mode asks the Approver for the whole batch.
func (a *Agent) approved(calls []client.ToolCall) bool {
	if a.cfg.Mode.AutoRunTools {
		return true
	}
	return a.Approver != nil && a.Approver(calls)
}

// executeBatch runs calls strictly in order so later tools observe the side
// effects of earlier ones.
func (a *Agent) executeBatch(ctx context.Context, calls []client.ToolCall) []ToolExecution {
	executions := make([]ToolExecution, 0, len(calls))
	for _, call := range calls {
		res := a.registry.Invoke(ctx, call.Name, call.Args)
		if a.OnToolResult != nil {
			a.OnToolResult(call, res)
		}
		executions = append(executions, ToolExecution{Call: call, Result: res})
	}
	return executions
}

// followUp feeds the batch results back to the model for one more response.
func (a *Agent) followUp(ctx context.Context, session *chat.Session, executions []ToolExecution) (string, int, error) {
	messages := a.buildMessages(session, formatResults(executions))
	resp, err := a.client.Chat(ctx, messages, a.OnFragment)
	if err != nil {
		return "", 0, err
	}
	return resp.Content, resp.TokensUsed, nil
}

// buildMessages assembles the request: system prompt, recent history, then
// the new user content.
func (a *Agent) buildMessages(session *chat.Session, userContent string) []client.Message {
	messages := []client.Message{{Role: "system", Content: a.systemPrompt()}}
	for _, m := range session.Recent(a.cfg.Session.HistoryWindow) {
		messages = append(messages, client.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, client.Message{Role: "user", Content: userContent})
	return messages
}

func formatResults(executions []ToolExecution) string {
	var out strings.Builder
	out.WriteString("Tool results:\n")
	for _, ex := range executions {
		fmt.Fprintf(&out, "\n[%s]\n", ex.Call.Name)
		if ex.Result.Success {
			out.WriteString(ex.Result.Content)
		} else {
			fmt.Fprintf(&out, "ERROR: %s", ex.Result.Error)
		}
		out.WriteString("\n")
	}
	return out.String()
}
