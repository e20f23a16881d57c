package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/audio-splitter/internal/lang"
	"github.com/alnah/audio-splitter/internal/plan"
	"github.com/alnah/audio-splitter/internal/transcribe"
)

// EnvOpenAIAPIKey is the environment variable holding the OpenAI API key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// transcribeOptions holds the parsed flags of the transcribe command.
type transcribeOptions struct {
	language string
	prompt   string
	model    string
	parallel int
	force    bool
}

// clampParallel constrains parallel request count to valid range [1, MaxRecommendedParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > transcribe.MaxRecommendedParallel {
		return transcribe.MaxRecommendedParallel
	}
	return n
}

// transcriptPath returns the transcript file for a chunk: "<chunk>.txt".
// Example: "talk_chunk000.mp3" -> "talk_chunk000.mp3.txt"
func transcriptPath(chunkPath string) string {
	return chunkPath + ".txt"
}

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env) *cobra.Command {
	var opts transcribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe <chunk-file>...",
		Short: "Transcribe compliant chunks with OpenAI",
		Long: `Upload chunks to OpenAI's transcription API and save each transcript
next to its chunk as <chunk-file>.txt.

Every chunk must be at most 25 MB and 1400 seconds long; run
"audiosplit chunk" first for longer recordings. Several chunks are
uploaded in parallel.

Requires OPENAI_API_KEY (environment or .env file).`,
		Example: `  audiosplit transcribe lecture_chunk000.mp3
  audiosplit transcribe lecture_chunk*.mp3 -l en -p 4
  audiosplit transcribe talk.m4a --prompt "Kubernetes, etcd, kubelet" --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Audio language (ISO 639-1 code, e.g. en, fr)")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Context or vocabulary hint for the model")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Transcription model (default: config model or "+transcribe.DefaultModel+")")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", transcribe.MaxRecommendedParallel, "Max concurrent API requests (1-10)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing transcripts")

	return cmd
}

// runTranscribe validates, uploads and saves the transcripts of inputs.
// Validation order: language -> files exist -> size -> duration ->
// outputs free -> API key. When some uploads fail, the transcripts that did
// come back are still saved before the error is returned.
func runTranscribe(cmd *cobra.Command, env *Env, inputs []string, opts transcribeOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	language, err := lang.Parse(opts.language)
	if err != nil {
		return err
	}

	for _, in := range inputs {
		if err := requireInput(in); err != nil {
			return err
		}
	}

	limits := plan.DefaultLimits()
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return fmt.Errorf("cannot access input file: %w", err)
		}
		if plan.Size(info.Size()) > limits.MaxBytes {
			return newMessageError(ErrChunkTooLarge, "chunk '%s' is larger than the %s limit", in, limits.MaxBytes)
		}
	}

	_, prober, err := newProber(ctx, env)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		md, err := prober.Probe(ctx, in)
		if err != nil {
			return err
		}
		if md.Duration > limits.MaxDuration {
			return newMessageError(ErrDurationExceeded,
				"chunk '%s' is longer than the %d second limit for transcription", in, int64(limits.MaxDuration.Seconds()))
		}
	}

	if !opts.force {
		for _, in := range inputs {
			if err := requireAbsent(transcriptPath(in)); err != nil {
				return err
			}
		}
	}

	apiKey, err := openAIKey(env)
	if err != nil {
		return err
	}

	// === TRANSCRIPTION ===

	cfg := loadConfig(env)
	model := opts.model
	if model == "" {
		model = cfg.Model
	}

	transcriber := env.TranscriberFactory.NewTranscriber(apiKey, env.Logger)
	topts := transcribe.Options{
		Model:    model,
		Language: language,
		Prompt:   opts.prompt,
	}

	if language != "" {
		env.Logger.Debug("language", "code", language, "name", lang.Name(language))
	}
	if len(inputs) == 1 {
		fmt.Fprintln(env.Stderr, "Transcribing...")
	} else {
		fmt.Fprintf(env.Stderr, "Transcribing %d chunks...\n", len(inputs))
	}
	results, uploadErr := transcribe.TranscribeAll(ctx, inputs, transcriber, topts, clampParallel(opts.parallel))

	// === WRITE OUTPUT ===

	for i, in := range inputs {
		// An empty result is a failed upload when uploadErr is set.
		if uploadErr != nil && results[i] == "" {
			continue
		}
		out := transcriptPath(in)
		if err := writeOutput(out, results[i], opts.force); err != nil {
			return errors.Join(uploadErr, err)
		}
		fmt.Fprintf(env.Stdout, "Transcript saved to '%s'\n", out)
	}
	return uploadErr
}

// openAIKey returns the API key from the environment.
func openAIKey(env *Env) (string, error) {
	key := env.Getenv(EnvOpenAIAPIKey)
	if key == "" {
		return "", fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}
	if strings.TrimSpace(key) == "" {
		return "", newMessageError(ErrAPIKeyMissing, "%s cannot be empty", EnvOpenAIAPIKey)
	}
	return strings.TrimSpace(key), nil
}

// requireAbsent fails when path already exists.
func requireAbsent(path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrOutputExists)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("cannot access output file: %w", err)
	}
}
