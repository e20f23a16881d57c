package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/cli"
	"github.com/alnah/audio-splitter/internal/config"
	"github.com/alnah/audio-splitter/internal/ffmpeg"
	"github.com/alnah/audio-splitter/internal/interrupt"
	"github.com/alnah/audio-splitter/internal/lang"
	"github.com/alnah/audio-splitter/internal/plan"
	"github.com/alnah/audio-splitter/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitInterrupt     = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels ctx so partial outputs are removed; a second one exits.
	watcher, ctx := interrupt.Watch(context.Background())

	env := cli.DefaultEnv()

	err := newRootCmd(env).ExecuteContext(ctx)
	interrupted := watcher.Interrupted()
	watcher.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := exitCode(err)
		if interrupted {
			code = ExitInterrupt
		}
		os.Exit(code)
	}
}

// newRootCmd builds the command tree around env.
func newRootCmd(env *cli.Env) *cobra.Command {
	var verbose bool

	inspect := cli.InspectCmd(env)

	rootCmd := &cobra.Command{
		Use:   "audiosplit [audio-file]",
		Short: "Split recordings into chunks that fit transcription upload limits",
		Long: `Split long recordings into chunks that satisfy the 25 MB upload limit
and the 1400 second duration limit of OpenAI's transcription API, split
compliant chunks further into equal parts, and transcribe them.

Given a single file and no command, audiosplit inspects it.`,
		Example: `  audiosplit lecture.mp3
  audiosplit chunk lecture.mp3 --max-size 20MB
  audiosplit split lecture_chunk000.mp3 --parts 3
  audiosplit transcribe lecture_chunk*.mp3`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:    cobra.MaximumNArgs(1),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				env.Logger = slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return inspect.RunE(cmd, args)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log external commands and decisions to stderr")

	rootCmd.AddCommand(inspect)
	rootCmd.AddCommand(cli.ChunkCmd(env))
	rootCmd.AddCommand(cli.SplitCmd(env))
	rootCmd.AddCommand(cli.TranscribeCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, cli.ErrAPIKeyMissing) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	// Checked before usage patterns: plan.ErrInvalidArgument reads "invalid argument".
	if errors.Is(err, plan.ErrInvalidArgument) || errors.Is(err, plan.ErrInvalidPlan) ||
		errors.Is(err, plan.ErrPartTooLarge) || errors.Is(err, audio.ErrFileNotFound) ||
		errors.Is(err, audio.ErrProbeFailed) || errors.Is(err, audio.ErrLocked) ||
		errors.Is(err, cli.ErrInputTooLarge) || errors.Is(err, cli.ErrChunkTooLarge) ||
		errors.Is(err, cli.ErrDurationExceeded) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, config.ErrInvalidKey) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, config.ErrNotDirectory) ||
		errors.Is(err, config.ErrNotWritable) || errors.Is(err, lang.ErrInvalid) {
		return ExitValidation
	}

	// Transcription errors (ExitTranscription = 5).
	if errors.Is(err, transcribe.ErrUploadFailed) {
		return ExitTranscription
	}

	// ffmpeg or filesystem failures while cutting. Checked before usage
	// patterns since ffmpeg stderr is part of the message.
	if errors.Is(err, audio.ErrCutFailed) {
		return ExitGeneral
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
var cobraUsageErrorPatterns = []string{
	"required flag",          // Missing required flag
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"unknown command",        // Subcommand doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value, e.g. --max-size 25GB
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
