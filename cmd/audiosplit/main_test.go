package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/cli"
	"github.com/alnah/audio-splitter/internal/config"
	"github.com/alnah/audio-splitter/internal/ffmpeg"
	"github.com/alnah/audio-splitter/internal/lang"
	"github.com/alnah/audio-splitter/internal/plan"
	"github.com/alnah/audio-splitter/internal/transcribe"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"interrupt", fmt.Errorf("cut: %w", context.Canceled), ExitInterrupt},
		{"ffmpeg missing", fmt.Errorf("resolve: %w", ffmpeg.ErrNotFound), ExitSetup},
		{"api key missing", cli.ErrAPIKeyMissing, ExitSetup},
		{"invalid argument", fmt.Errorf("%w: --parts must be at least 1, got 0", plan.ErrInvalidArgument), ExitValidation},
		{"invalid plan", plan.ErrInvalidPlan, ExitValidation},
		{"part too large", plan.ErrPartTooLarge, ExitValidation},
		{"file not found", audio.ErrFileNotFound, ExitValidation},
		{"probe failed", audio.ErrProbeFailed, ExitValidation},
		{"cut failed", audio.ErrCutFailed, ExitGeneral},
		{"cut failed with ffmpeg stderr", fmt.Errorf("%w: ffmpeg: invalid argument", audio.ErrCutFailed), ExitGeneral},
		{"locked", audio.ErrLocked, ExitValidation},
		{"input too large", cli.ErrInputTooLarge, ExitValidation},
		{"chunk too large", cli.ErrChunkTooLarge, ExitValidation},
		{"duration exceeded", cli.ErrDurationExceeded, ExitValidation},
		{"output exists", cli.ErrOutputExists, ExitValidation},
		{"config key", config.ErrInvalidKey, ExitValidation},
		{"config value", config.ErrInvalidValue, ExitValidation},
		{"language", fmt.Errorf("%w \"xx\"", lang.ErrInvalid), ExitValidation},
		{"upload failed", fmt.Errorf("%w: a.mp3: %w", transcribe.ErrUploadFailed, transcribe.ErrRateLimit), ExitTranscription},
		{"bad flag value", errors.New(`invalid argument "25GB" for "--max-size" flag: unknown size unit`), ExitUsage},
		{"missing flag", errors.New(`required flag(s) "parts" not set`), ExitUsage},
		{"arg count", errors.New("accepts 1 arg(s), received 2"), ExitUsage},
		{"other", errors.New("disk on fire"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	root := newRootCmd(cli.NewEnv(cli.WithStdout(io.Discard), cli.WithStderr(io.Discard)))

	for _, name := range []string{"inspect", "chunk", "split", "transcribe", "config"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err: %v)", name, err)
		}
	}
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("expected a --verbose flag")
	}
}

func TestRootCmd_InspectShorthand(t *testing.T) {
	t.Parallel()

	var stderr strings.Builder
	root := newRootCmd(cli.NewEnv(cli.WithStdout(io.Discard), cli.WithStderr(&stderr)))
	missing := filepath.Join(t.TempDir(), "missing.mp3")
	root.SetArgs([]string{missing})
	root.SetOut(io.Discard)

	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, audio.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if exitCode(err) != ExitValidation {
		t.Errorf("exit code = %d, want %d", exitCode(err), ExitValidation)
	}
}

func TestRootCmd_Help(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	root := newRootCmd(cli.NewEnv(cli.WithStdout(io.Discard), cli.WithStderr(io.Discard)))
	root.SetArgs([]string{})
	root.SetOut(&out)

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "chunk") {
		t.Errorf("help output missing commands:\n%s", out.String())
	}
}

func TestRootCmd_VerboseInstallsLogger(t *testing.T) {
	t.Parallel()

	env := cli.NewEnv(cli.WithStdout(io.Discard), cli.WithStderr(io.Discard))
	before := env.Logger
	root := newRootCmd(env)
	root.SetArgs([]string{"--verbose", filepath.Join(os.TempDir(), "audiosplit-does-not-exist.mp3")})
	root.SetOut(io.Discard)

	_ = root.ExecuteContext(context.Background())
	if env.Logger == before {
		t.Error("--verbose should replace the logger")
	}
}
