// Package app wires the engine together behind an interactive console loop.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pointer/internal/agent"
	"pointer/internal/chat"
	"pointer/internal/client"
	"pointer/internal/config"
	codectx "pointer/internal/context"
	"pointer/internal/logging"
	"pointer/internal/security"
	"pointer/internal/tools"
)

// App is the interactive console application.
type App struct {
	cfg      *config.Config
	client   *client.Client
	registry *tools.Registry
	cache    *codectx.Cache
	store    *chat.Store
	agent    *agent.Agent
	watcher  *codectx.Watcher

	in      *bufio.Scanner
	out     io.Writer
	styles  styles
	started time.Time
}

// New builds the application around workDir.
func New(cfg *config.Config, workDir string) (*App, error) {
	root := codectx.FindProjectRoot(workDir)

	paths, err := security.NewPathValidator(root, cfg.Tools.AllowedDirs...)
	if err != nil {
		return nil, fmt.Errorf("workspace setup failed: %w", err)
	}

	registry := tools.DefaultRegistry(tools.Options{
		Paths:          paths,
		CommandTimeout: cfg.Tools.CommandTimeoutSeconds,
		MaxOutputLines: cfg.UI.MaxOutputLines,
		FetchMaxBytes:  cfg.Web.FetchMaxBytes,
		SearchEndpoint: cfg.Web.SearchEndpoint,
		MaxResults:     cfg.Web.MaxResults,
	})

	cache := codectx.NewCache(root, cfg.Context)

	store, err := chat.NewStore(cfg.Session.Dir)
	if err != nil {
		return nil, fmt.Errorf("session store setup failed: %w", err)
	}

	apiClient := client.New(client.Options{
		BaseURL:     cfg.API.BaseURL,
		APIKey:      cfg.API.APIKey,
		Model:       cfg.API.Model,
		Temperature: cfg.API.Temperature,
		MaxTokens:   cfg.API.MaxTokens,
		Timeout:     cfg.API.Timeout(),
	})

	a := &App{
		cfg:      cfg,
		client:   apiClient,
		registry: registry,
		cache:    cache,
		store:    store,
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		styles:   newStyles(),
		started:  time.Now(),
	}

	a.agent = agent.New(apiClient, registry, cache, store, cfg)
	a.agent.Approver = a.confirmBatch
	a.agent.OnToolResult = a.showToolResult

	return a, nil
}

// Run starts the console loop and blocks until /exit or EOF.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.cache.Refresh()
	if w, err := codectx.NewWatcher(a.cache); err == nil {
		a.watcher = w
		defer w.Close()
	} else {
		logging.Debug("file watching unavailable", "error", err)
	}

	a.printBanner()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return nil
		default:
		}

		fmt.Fprint(a.out, a.styles.prompt.Render("you> ")+" ")
		if !a.in.Scan() {
			fmt.Fprintln(a.out)
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := a.handleCommand(line); quit {
				return nil
			}
			continue
		}

		a.handleTurn(ctx, line)
	}
}

func (a *App) handleTurn(ctx context.Context, input string) {
	result, err := a.agent.ProcessMessage(ctx, input)
	if err != nil {
		a.printError(err)
		return
	}

	if result.Reasoning != "" && a.cfg.UI.ShowThinking {
		fmt.Fprintln(a.out, a.styles.dim.Render(result.Reasoning))
	}

	a.printAssistant(result.Response)

	switch {
	case result.DryRun:
		fmt.Fprintln(a.out, a.styles.dim.Render("dry-run mode: tool calls were not executed"))
	case result.Declined:
		fmt.Fprintln(a.out, a.styles.dim.Render("tool batch declined"))
	case result.FollowUp != "":
		a.printAssistant(result.FollowUp)
	}
}

// confirmBatch shows the pending calls and waits for a yes/no. Declining
// aborts the whole batch.
func (a *App) confirmBatch(calls []client.ToolCall) bool {
	fmt.Fprintln(a.out, a.styles.heading.Render("The model wants to run:"))
	for i, call := range calls {
		fmt.Fprintf(a.out, "  %d. %s %s\n", i+1, call.Name, formatArgs(call.Args))
	}
	fmt.Fprint(a.out, "Run all of these? [y/N] ")

	if !a.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(a.in.Text()))
	return answer == "y" || answer == "yes"
}

func (a *App) showToolResult(call client.ToolCall, result tools.ToolResult) {
	if result.Success {
		fmt.Fprintln(a.out, a.styles.tool.Render("• "+call.Name))
		return
	}
	fmt.Fprintln(a.out, a.styles.errText.Render("• "+call.Name+": "+result.Error))
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for k, v := range args {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (a *App) printError(err error) {
	fmt.Fprintln(a.out, a.styles.errText.Render("error: "+err.Error()))
}
