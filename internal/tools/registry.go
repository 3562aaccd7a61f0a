package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pointer/internal/logging"
	"pointer/internal/security"
)

// Registry manages the collection of available tools and dispatches
// invocations to them.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = tool
	return nil
}

// MustRegister adds a tool and logs a warning on conflict.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		logging.Warn("tool registration failed", "tool", tool.Name(), "error", err)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all registered tools in name order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Invoke dispatches one tool call. It never returns an error to the caller:
// an unknown name, a validation failure, an execution error, and even a
// panicking tool all come back as an error-status ToolResult so a single bad
// invocation cannot abort the turn.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("tool panicked", "tool", name, "panic", rec)
			result = NewErrorResult(fmt.Sprintf("tool %s crashed: %v", name, rec))
		}
	}()

	tool, ok := r.Get(name)
	if !ok {
		return NewErrorResult(fmt.Sprintf("unknown tool: %s", name))
	}

	if args == nil {
		args = make(map[string]any)
	}
	if err := tool.Validate(args); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid arguments for %s: %v", name, err))
	}

	res, err := tool.Execute(ctx, args)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("%s failed: %v", name, err))
	}
	return res
}

// Options carries the shared dependencies and limits for the default tool set.
type Options struct {
	Paths          *security.PathValidator
	CommandTimeout int   // seconds; zero means the default
	MaxOutputLines int   // zero means unlimited
	FetchMaxBytes  int64 // zero means the default
	SearchEndpoint string
	MaxResults     int
}

// DefaultRegistry creates a registry with the standard capability set.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()

	r.MustRegister(NewReadFileTool(opts.Paths))
	r.MustRegister(NewWriteFileTool(opts.Paths))
	r.MustRegister(NewEditFileTool(opts.Paths))
	r.MustRegister(NewSearchFilesTool(opts.Paths))
	r.MustRegister(NewSearchContentTool(opts.Paths))
	r.MustRegister(NewRunCommandTool(opts.Paths, opts.CommandTimeout, opts.MaxOutputLines))
	r.MustRegister(NewListDirectoryTool(opts.Paths))
	r.MustRegister(NewFileInfoTool(opts.Paths))
	r.MustRegister(NewCreateDirectoryTool(opts.Paths))
	r.MustRegister(NewDeleteFileTool(opts.Paths))
	r.MustRegister(NewMoveFileTool(opts.Paths))
	r.MustRegister(NewCopyFileTool(opts.Paths))
	r.MustRegister(NewCreateDiffTool(opts.Paths))
	r.MustRegister(NewWebFetchTool(opts.FetchMaxBytes))
	r.MustRegister(NewWebSearchTool(opts.SearchEndpoint, opts.MaxResults))

	return r
}
