package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/format"
	"github.com/alnah/audio-splitter/internal/plan"
)

// InspectCmd creates the inspect command.
// The env parameter provides injectable dependencies for testing.
func InspectCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <audio-file>",
		Short: "Show codec, duration and bitrate of an audio file",
		Long: `Show codec, duration, bitrate and size of an audio file, whether it
already fits the chunk limits, and how many chunks "audiosplit chunk"
would create.`,
		Example: `  audiosplit inspect lecture.mp3
  audiosplit lecture.mp3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, env, args[0])
		},
	}
}

// runInspect prints the metadata table of inputPath.
func runInspect(cmd *cobra.Command, env *Env, inputPath string) error {
	ctx := cmd.Context()

	if err := requireInput(inputPath); err != nil {
		return err
	}

	cfg := loadConfig(env)
	size, err := maxSize(0, false, cfg)
	if err != nil {
		return err
	}
	limits := plan.Limits{MaxBytes: size, MaxDuration: plan.TranscriptionMaxDuration}

	_, prober, err := newProber(ctx, env)
	if err != nil {
		return err
	}
	md, err := prober.Probe(ctx, inputPath)
	if err != nil {
		return err
	}

	digest, err := audio.Digest(inputPath)
	if err != nil {
		return fmt.Errorf("cannot hash input file: %w", err)
	}

	fits := "no"
	if md.WithinLimits(limits) {
		fits = "yes"
	}
	chunks := "-"
	if p, err := plan.PlanChunks(md.Duration, md.BitRate, limits); err == nil {
		chunks = strconv.Itoa(len(p))
	} else {
		env.Logger.Debug("plan", "error", err)
	}

	rows := [][]string{
		{"File", inputPath},
		{"Codec", orUnknown(md.Codec)},
		{"Format", orUnknown(md.FormatName)},
		{"Duration", fmt.Sprintf("%s (%s)", format.Duration(md.Duration), format.Seconds(md.Duration))},
		{"Bitrate", format.Bitrate(md.BitRate)},
		{"Size", format.Size(md.Size)},
		{"Sample rate", orUnknown(hz(md.SampleRate))},
		{"Channels", orUnknown(count(md.Channels))},
		{"BLAKE3", digest},
		{"Fits " + limits.String(), fits},
		{"Chunks", chunks},
	}
	fmt.Fprintln(env.Stdout, renderTable([]string{"Property", "Value"}, rows, nil))
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func hz(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n) + " Hz"
}

func count(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
