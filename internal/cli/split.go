package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/plan"
)

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var (
		parts     int
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "split <chunk-file>",
		Short: "Split a compliant chunk into equal parts",
		Long: `Split a chunk that already fits the limits (25 MB, 1400 seconds) into
equal-length parts named <stem>_part001<ext>, <stem>_part002<ext>, ...
The last part absorbs the remainder.

Larger inputs are rejected: run "audiosplit chunk" on them first.`,
		Example: `  audiosplit split lecture_chunk000.mp3 --parts 3
  audiosplit split lecture_chunk000.mp3 -n 2 -o parts/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, env, args[0], parts, outputDir)
		},
	}

	cmd.Flags().IntVarP(&parts, "parts", "n", 0, "Number of equal parts (at least 1)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for parts (default: next to the input)")
	_ = cmd.MarkFlagRequired("parts")

	return cmd
}

// runSplit cuts inputPath into parts equal windows.
func runSplit(cmd *cobra.Command, env *Env, inputPath string, parts int, outDirFlag string) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if parts < 1 {
		return fmt.Errorf("%w: --parts must be at least 1, got %d", plan.ErrInvalidArgument, parts)
	}
	if err := requireInput(inputPath); err != nil {
		return err
	}

	cfg := loadConfig(env)
	outDir := outputDir(outDirFlag, cfg)
	limits := plan.DefaultLimits()

	tools, prober, err := newProber(ctx, env)
	if err != nil {
		return err
	}

	md, err := prober.Probe(ctx, inputPath)
	if err != nil {
		return err
	}
	if !md.WithinLimits(limits) {
		return newMessageError(ErrInputTooLarge,
			"input '%s' exceeds the chunk limits; run `audiosplit chunk %s` first", inputPath, inputPath)
	}

	// === PLAN ===

	p, err := plan.PlanEqualParts(md.Duration, md.BitRate, parts, limits)
	if err != nil {
		return err
	}

	// === CUT ===

	progress, finish := newProgress(env, "Splitting")
	cutter, err := env.CutterFactory.NewCutter(tools.FFmpeg, progress, env.Logger)
	if err != nil {
		return err
	}

	segments, err := cutter.Cut(ctx, inputPath, p, audio.PartNaming, outDir)
	finish()
	if err != nil {
		return err
	}

	if err := verifySegments(ctx, prober, segments, limits, plan.ErrPartTooLarge); err != nil {
		return err
	}

	printSegments(env, segments)
	return nil
}
