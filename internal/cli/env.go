package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/config"
	"github.com/alnah/audio-splitter/internal/ffmpeg"
	"github.com/alnah/audio-splitter/internal/plan"
	"github.com/alnah/audio-splitter/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	IsTerminal func(io.Writer) bool
	Logger     *slog.Logger

	// Factories for domain objects
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	ProberFactory      ProberFactory
	CutterFactory      CutterFactory
	TranscriberFactory TranscriberFactory
}

// FFmpegResolver resolves the paths to the ffmpeg and ffprobe binaries.
type FFmpegResolver interface {
	Resolve() (ffmpeg.Tools, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ProberFactory creates metadata probers.
type ProberFactory interface {
	NewProber(tools ffmpeg.Tools, logger *slog.Logger) (audio.Prober, error)
}

// Cutter writes the windows of a plan to disk.
type Cutter interface {
	Cut(ctx context.Context, src string, p plan.Plan, naming audio.Naming, outDir string) ([]audio.Segment, error)
}

// CutterFactory creates cutters.
type CutterFactory interface {
	NewCutter(ffmpegPath string, progress audio.ProgressFunc, logger *slog.Logger) (Cutter, error)
}

// TranscriberFactory creates transcribers for audio-to-text conversion.
type TranscriberFactory interface {
	NewTranscriber(apiKey string, logger *slog.Logger) transcribe.Transcriber
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithProberFactory sets the prober factory.
func WithProberFactory(f ProberFactory) EnvOption {
	return func(e *Env) {
		e.ProberFactory = f
	}
}

// WithCutterFactory sets the cutter factory.
func WithCutterFactory(f CutterFactory) EnvOption {
	return func(e *Env) {
		e.CutterFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		IsTerminal:         isTerminal,
		Logger:             slog.New(slog.DiscardHandler),
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		ProberFactory:      &defaultProberFactory{},
		CutterFactory:      &defaultCutterFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve() (ffmpeg.Tools, error) {
	return ffmpeg.NewResolver().Resolve()
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.NewVersionChecker().Check(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultProberFactory implements ProberFactory using ffprobe.
type defaultProberFactory struct{}

func (defaultProberFactory) NewProber(tools ffmpeg.Tools, logger *slog.Logger) (audio.Prober, error) {
	p, err := audio.NewFFprobeProber(tools, audio.WithProberLogger(logger))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// defaultCutterFactory implements CutterFactory using the audio package.
type defaultCutterFactory struct{}

func (defaultCutterFactory) NewCutter(ffmpegPath string, progress audio.ProgressFunc, logger *slog.Logger) (Cutter, error) {
	c, err := audio.NewCutter(ffmpegPath, audio.WithProgress(progress), audio.WithCutterLogger(logger))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// defaultTranscriberFactory implements TranscriberFactory using OpenAI.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string, logger *slog.Logger) transcribe.Transcriber {
	client := openai.NewClient(apiKey)
	return transcribe.NewOpenAITranscriber(client, transcribe.WithLogger(logger))
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ ProberFactory      = (*defaultProberFactory)(nil)
	_ CutterFactory      = (*defaultCutterFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ Cutter             = (*audio.Cutter)(nil)
)
