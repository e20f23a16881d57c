package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/config"
	"github.com/alnah/audio-splitter/internal/ffmpeg"
	"github.com/alnah/audio-splitter/internal/format"
	"github.com/alnah/audio-splitter/internal/plan"
)

// requireInput fails when path does not exist.
func requireInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newMessageError(audio.ErrFileNotFound, "input file '%s' was not found", path)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	return nil
}

// loadConfig loads the user configuration, warning instead of failing.
func loadConfig(env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		warnf(env, "failed to load config: %v", err)
		return config.Config{}
	}
	return cfg
}

// newProber resolves the external tools and returns a prober for them.
func newProber(ctx context.Context, env *Env) (ffmpeg.Tools, audio.Prober, error) {
	tools, err := env.FFmpegResolver.Resolve()
	if err != nil {
		return ffmpeg.Tools{}, nil, err
	}
	env.FFmpegResolver.CheckVersion(ctx, tools.FFmpeg)
	env.Logger.Debug("tools", "ffmpeg", tools.FFmpeg, "ffprobe", tools.FFprobe)

	prober, err := env.ProberFactory.NewProber(tools, env.Logger)
	if err != nil {
		return ffmpeg.Tools{}, nil, err
	}
	return tools, prober, nil
}

// maxSize picks the size limit: an explicit flag, then the configured
// max-size, then the default.
func maxSize(flag sizeValue, flagSet bool, cfg config.Config) (plan.Size, error) {
	if flagSet {
		return plan.Size(flag), nil
	}
	if cfg.MaxSize != "" {
		s, err := plan.ParseSize(cfg.MaxSize)
		if err != nil {
			return 0, fmt.Errorf("config %s: %w", config.KeyMaxSize, err)
		}
		return s, nil
	}
	return plan.DefaultMaxBytes, nil
}

// outputDir picks the output directory: an explicit flag, then the
// configured output-dir. Empty means next to the input.
func outputDir(flag string, cfg config.Config) string {
	if flag != "" {
		return config.ExpandPath(flag)
	}
	return config.ExpandPath(cfg.OutputDir)
}

// verifySegments re-checks every written file against limits: its size on
// disk and its probed duration. On the first violation every segment is
// removed.
func verifySegments(ctx context.Context, prober audio.Prober, segments []audio.Segment, limits plan.Limits, kind error) error {
	for _, s := range segments {
		err := verifyFile(ctx, prober, s.Path, limits, kind)
		if err != nil {
			for _, s := range segments {
				_ = os.Remove(s.Path) // best-effort cleanup; report the violation
			}
			return err
		}
	}
	return nil
}

// verifyFile checks that path fits limits, naming it in the error.
func verifyFile(ctx context.Context, prober audio.Prober, path string, limits plan.Limits, kind error) error {
	md, err := prober.Probe(ctx, path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	if plan.Size(md.Size) > limits.MaxBytes {
		return fmt.Errorf("%s exceeded the %s limit (%s): %w", name, limits.MaxBytes, format.Size(md.Size), kind)
	}
	if md.Duration > limits.MaxDuration {
		return fmt.Errorf("%s exceeded the %d second limit (%s): %w",
			name, int64(limits.MaxDuration.Seconds()), format.Seconds(md.Duration), kind)
	}
	return nil
}

// printSegments reports each written file on env.Stdout.
func printSegments(env *Env, segments []audio.Segment) {
	for _, s := range segments {
		fmt.Fprintf(env.Stdout, "Created %s (start: %s, duration: %s)\n",
			filepath.Base(s.Path), format.Seconds(s.Window.Start), format.Seconds(s.Window.Duration()))
	}
}

// planTable renders p with the estimated size of each window.
func planTable(p plan.Plan, src string, naming audio.Naming, bitrate int64) string {
	rows := make([][]string, 0, len(p))
	for _, w := range p {
		rows = append(rows, []string{
			naming.Name(src, w.Index),
			format.Seconds(w.Start),
			format.Seconds(w.End),
			format.Seconds(w.Duration()),
			plan.BytesForDuration(w.Duration(), bitrate).String(),
		})
	}
	return renderTable(
		[]string{"Output", "Start", "End", "Duration", "Est. size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}
