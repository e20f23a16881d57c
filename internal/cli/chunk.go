package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/format"
	"github.com/alnah/audio-splitter/internal/plan"
)

// sizeValue is a pflag.Value parsing sizes such as "25MB" or "500KB".
type sizeValue plan.Size

var _ pflag.Value = (*sizeValue)(nil)

func (s *sizeValue) String() string { return plan.Size(*s).String() }

func (s *sizeValue) Set(v string) error {
	n, err := plan.ParseSize(v)
	if err != nil {
		return err
	}
	*s = sizeValue(n)
	return nil
}

func (s *sizeValue) Type() string { return "size" }

// chunkOptions holds the parsed flags of the chunk command.
type chunkOptions struct {
	maxSize    sizeValue
	maxSizeSet bool
	outputDir  string
	dryRun     bool
}

// ChunkCmd creates the chunk command.
// The env parameter provides injectable dependencies for testing.
func ChunkCmd(env *Env) *cobra.Command {
	opts := chunkOptions{maxSize: sizeValue(plan.DefaultMaxBytes)}

	cmd := &cobra.Command{
		Use:   "chunk <audio-file>",
		Short: "Split a recording into chunks that fit the upload limits",
		Long: `Split a recording into sequential chunks that each satisfy a maximum
upload size and the 1400 second transcription limit.

Chunks are cut with FFmpeg stream copy (no re-encoding) and named
<stem>_chunk000<ext>, <stem>_chunk001<ext>, ... next to the input, or in
--output-dir. A file that already fits is copied unchanged.

Sizes are decimal: 1MB = 1,000,000 bytes. A bare number means MB.`,
		Example: `  audiosplit chunk lecture.mp3
  audiosplit chunk lecture.mp3 --max-size 20MB -o chunks/
  audiosplit chunk lecture.mp3 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.maxSizeSet = cmd.Flags().Changed("max-size")
			return runChunk(cmd, env, args[0], opts)
		},
	}

	cmd.Flags().Var(&opts.maxSize, "max-size", "Maximum size per chunk (B, KB, MB)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for chunks (default: next to the input)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the chunk plan without cutting")

	return cmd
}

// runChunk plans and cuts the chunks of inputPath.
func runChunk(cmd *cobra.Command, env *Env, inputPath string, opts chunkOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if err := requireInput(inputPath); err != nil {
		return err
	}

	cfg := loadConfig(env)
	size, err := maxSize(opts.maxSize, opts.maxSizeSet, cfg)
	if err != nil {
		return err
	}
	limits := plan.Limits{MaxBytes: size, MaxDuration: plan.TranscriptionMaxDuration}
	outDir := outputDir(opts.outputDir, cfg)

	// === PLAN ===

	tools, prober, err := newProber(ctx, env)
	if err != nil {
		return err
	}

	md, err := prober.Probe(ctx, inputPath)
	if err != nil {
		return err
	}
	env.Logger.Debug("probed", "metadata", md.String(), "limits", limits.String())

	p, err := plan.PlanChunks(md.Duration, md.BitRate, limits)
	if err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Fprintf(env.Stderr, "%s at %s: %d chunk(s) within %s\n",
			format.Duration(md.Duration), format.Bitrate(md.BitRate), len(p), limits)
		fmt.Fprintln(env.Stdout, planTable(p, inputPath, audio.ChunkNaming, md.BitRate))
		return nil
	}

	if p.Whole() {
		fmt.Fprintln(env.Stderr, "Input already fits the limits; copying it unchanged.")
	} else {
		fmt.Fprintf(env.Stderr, "Cutting %d chunks...\n", len(p))
	}

	// === CUT ===

	progress, finish := newProgress(env, "Cutting")
	cutter, err := env.CutterFactory.NewCutter(tools.FFmpeg, progress, env.Logger)
	if err != nil {
		return err
	}

	segments, err := cutter.Cut(ctx, inputPath, p, audio.ChunkNaming, outDir)
	finish()
	if err != nil {
		return err
	}

	// Stream copy cuts on packet boundaries, so sizes can drift from the plan.
	if err := verifySegments(ctx, prober, segments, limits, ErrChunkTooLarge); err != nil {
		return err
	}

	printSegments(env, segments)
	return nil
}
