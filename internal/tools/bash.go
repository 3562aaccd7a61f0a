package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"pointer/internal/fileutil"
	"pointer/internal/logging"
	"pointer/internal/security"
)

// safeEnvVars is the whitelist of environment variables passed to commands,
// keeping API keys and other secrets out of subprocesses.
var safeEnvVars = []string{
	"PATH", "HOME", "USER", "SHELL", "TERM",
	"LANG", "LC_ALL", "LC_CTYPE",
	"TMPDIR", "TMP", "TEMP",
	"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_CACHE_HOME",
	"GOPATH", "GOROOT", "GOPROXY", "GOFLAGS",
	"NODE_PATH", "PYTHONPATH", "VIRTUAL_ENV",
}

const (
	defaultCommandTimeout = 30 * time.Second
	killGracePeriod       = 5 * time.Second
	maxCommandOutput      = 30000
)

// RunCommandTool executes shell commands with a hard timeout.
type RunCommandTool struct {
	paths          *security.PathValidator
	timeout        time.Duration
	maxOutputLines int
}

// NewRunCommandTool creates a RunCommandTool. timeoutSeconds and
// maxOutputLines fall back to defaults when non-positive.
func NewRunCommandTool(paths *security.PathValidator, timeoutSeconds, maxOutputLines int) *RunCommandTool {
	timeout := defaultCommandTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &RunCommandTool{paths: paths, timeout: timeout, maxOutputLines: maxOutputLines}
}

func (t *RunCommandTool) Name() string {
	return "run_command"
}

func (t *RunCommandTool) Description() string {
	return `Runs a shell command and returns stdout, stderr, and the exit code.

PARAMETERS:
- command (required): the command line to run via the shell
- dir (optional): working directory, relative to the project root
- timeout (optional): seconds before the command is terminated

Commands that exceed the timeout are terminated, forcibly if necessary.`
}

func (t *RunCommandTool) Validate(args map[string]any) error {
	command, ok := GetString(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return NewValidationError("command", "is required")
	}
	return nil
}

func (t *RunCommandTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	command, _ := GetString(args, "command")

	workDir := t.paths.Root()
	if dir, ok := GetString(args, "dir"); ok && dir != "" {
		abs, err := t.paths.ResolveDir(dir)
		if err != nil {
			return NewErrorResult(err.Error()), nil
		}
		workDir = abs
	}

	timeout := t.timeout
	if secs, ok := GetInt(args, "timeout"); ok && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "bash", "-c", command)
	cmd.Dir = workDir
	cmd.Env = buildSafeEnv()
	setProcGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return NewErrorResult(fmt.Sprintf("failed to start command: %v", err)), nil
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	timedOut := false
	select {
	case waitErr = <-done:
	case <-execCtx.Done():
		timedOut = true
		// Ask the whole process group to stop, then force it.
		killProcGroup(cmd, killGracePeriod)
		waitErr = <-done
	}

	if timedOut {
		logging.Warn("command timed out", "command", command, "timeout", timeout)
		return NewErrorResult(fmt.Sprintf("command timed out after %v", timeout)), nil
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return NewErrorResult(fmt.Sprintf("command failed: %v", waitErr)), nil
		}
	}

	content := t.formatOutput(stdout.String(), stderr.String(), exitCode)
	data := map[string]any{
		"stdout":    stdout.String(),
		"stderr":    stderr.String(),
		"exit_code": exitCode,
	}

	if exitCode != 0 {
		return ToolResult{
			Content: content,
			Data:    data,
			Error:   fmt.Sprintf("command exited with code %d", exitCode),
			Success: false,
		}, nil
	}
	return NewSuccessResultWithData(content, data), nil
}

func (t *RunCommandTool) formatOutput(stdout, stderr string, exitCode int) string {
	var out strings.Builder
	if stdout != "" {
		out.WriteString(stdout)
	}
	if stderr != "" {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString("STDERR:\n")
		out.WriteString(stderr)
	}
	if exitCode != 0 {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "Exit code: %d", exitCode)
	}

	result := out.String()
	if len(result) > maxCommandOutput {
		total := len(result)
		result = result[:maxCommandOutput] +
			fmt.Sprintf("\n... (output truncated: showing %d of %d characters)", maxCommandOutput, total)
	}
	result = fileutil.TruncateLines(result, t.maxOutputLines)
	if result == "" {
		result = "(no output)"
	}
	return result
}

func buildSafeEnv() []string {
	env := make([]string, 0, len(safeEnvVars))
	for _, key := range safeEnvVars {
		if val := os.Getenv(key); val != "" {
			env = append(env, key+"="+val)
		}
	}
	hasPath := false
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			hasPath = true
			break
		}
	}
	if !hasPath {
		env = append(env, "PATH=/usr/local/bin:/usr/bin:/bin")
	}
	return env
}
