package ffmpeg

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// ---------------------------------------------------------------------------
// Executor - testable tool execution with dependency injection
// ---------------------------------------------------------------------------

// runOutputFn is the function type for running a command and capturing output.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// Executor runs FFmpeg tools with injectable dependencies.
type Executor struct {
	runOutput runOutputFn
	logger    *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput sets a custom runOutput function (for testing).
func WithRunOutput(fn runOutputFn) ExecutorOption {
	return func(e *Executor) { e.runOutput = fn }
}

// WithExecutorLogger sets the logger used for command lines.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		runOutput: defaultRunOutput,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOutput executes a tool and captures its combined stdout and stderr.
// The output is returned even when the command fails, since FFmpeg reports
// useful diagnostics alongside non-zero exit codes.
func (e *Executor) RunOutput(ctx context.Context, path string, args []string) (string, error) {
	e.logger.Debug("exec", "cmd", path, "args", strings.Join(args, " "))
	return e.runOutput(ctx, path, args)
}

// defaultRunOutput is the production implementation.
func defaultRunOutput(ctx context.Context, path string, args []string) (string, error) {
	// #nosec G204 -- path comes from Resolver, args are built internally
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	return string(out), err
}
