package cli

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/alnah/audio-splitter/internal/audio"
	"github.com/alnah/audio-splitter/internal/config"
	"github.com/alnah/audio-splitter/internal/ffmpeg"
	"github.com/alnah/audio-splitter/internal/plan"
	"github.com/alnah/audio-splitter/internal/transcribe"
)

// Notes:
// - Mocks record their calls under a mutex so tests may run commands that
//   fan out to goroutines (transcribe uploads in parallel).
// - Func fields override the default behavior; nil means "succeed".

// ---------------------------------------------------------------------------
// mockFFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	mu               sync.Mutex
	ResolveFunc      func() (ffmpeg.Tools, error)
	resolveCalls     int
	checkVersionArgs []string
}

var testTools = ffmpeg.Tools{FFmpeg: "/usr/bin/ffmpeg", FFprobe: "/usr/bin/ffprobe"}

func (m *mockFFmpegResolver) Resolve() (ffmpeg.Tools, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()
	if m.ResolveFunc != nil {
		return m.ResolveFunc()
	}
	return testTools, nil
}

func (m *mockFFmpegResolver) CheckVersion(_ context.Context, ffmpegPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkVersionArgs = append(m.checkVersionArgs, ffmpegPath)
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// mockConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

// ---------------------------------------------------------------------------
// mockProberFactory / mockProber
// ---------------------------------------------------------------------------

type mockProberFactory struct {
	mu     sync.Mutex
	prober *mockProber
	err    error
	tools  []ffmpeg.Tools
}

func (m *mockProberFactory) NewProber(tools ffmpeg.Tools, _ *slog.Logger) (audio.Prober, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = append(m.tools, tools)
	if m.err != nil {
		return nil, m.err
	}
	return m.prober, nil
}

// mockProber returns the metadata registered for a path. Unregistered paths
// are described from the file on disk: its real size, 10s at 128 kb/s.
type mockProber struct {
	mu        sync.Mutex
	ProbeFunc func(ctx context.Context, path string) (audio.Metadata, error)
	metadata  map[string]audio.Metadata
	errs      map[string]error
	probed    []string
}

func newMockProber() *mockProber {
	return &mockProber{
		metadata: make(map[string]audio.Metadata),
		errs:     make(map[string]error),
	}
}

func (m *mockProber) set(path string, md audio.Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	md.Path = path
	m.metadata[path] = md
}

func (m *mockProber) fail(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[path] = err
}

func (m *mockProber) Probe(ctx context.Context, path string) (audio.Metadata, error) {
	m.mu.Lock()
	m.probed = append(m.probed, path)
	md, ok := m.metadata[path]
	err := m.errs[path]
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	if err != nil {
		return audio.Metadata{}, err
	}
	if ok {
		return md, nil
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return audio.Metadata{}, statErr
	}
	return audio.Metadata{
		Path:     path,
		Codec:    "mp3",
		Duration: 10 * time.Second,
		BitRate:  128_000,
		Size:     info.Size(),
	}, nil
}

func (m *mockProber) Probed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.probed...)
}

// ---------------------------------------------------------------------------
// mockCutterFactory / mockCutter
// ---------------------------------------------------------------------------

type mockCutterFactory struct {
	mu        sync.Mutex
	cutter    *mockCutter
	err       error
	calls     int
	ffmpegArg string
	progress  audio.ProgressFunc
}

func (m *mockCutterFactory) NewCutter(ffmpegPath string, progress audio.ProgressFunc, _ *slog.Logger) (Cutter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.ffmpegArg = ffmpegPath
	m.progress = progress
	if m.err != nil {
		return nil, m.err
	}
	return m.cutter, nil
}

func (m *mockCutterFactory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type cutCall struct {
	Src    string
	Plan   plan.Plan
	Naming audio.Naming
	OutDir string
}

// mockCutter writes one small file per window at the path the naming
// scheme selects, unless CutFunc overrides it.
type mockCutter struct {
	mu      sync.Mutex
	CutFunc func(ctx context.Context, src string, p plan.Plan, naming audio.Naming, outDir string) ([]audio.Segment, error)
	calls   []cutCall
}

func (m *mockCutter) Cut(ctx context.Context, src string, p plan.Plan, naming audio.Naming, outDir string) ([]audio.Segment, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cutCall{Src: src, Plan: p, Naming: naming, OutDir: outDir})
	m.mu.Unlock()

	if m.CutFunc != nil {
		return m.CutFunc(ctx, src, p, naming, outDir)
	}

	segments := make([]audio.Segment, 0, len(p))
	for _, w := range p {
		path := naming.Path(src, outDir, w.Index)
		if err := os.WriteFile(path, []byte("segment"), 0o600); err != nil {
			return nil, err
		}
		segments = append(segments, audio.Segment{Path: path, Window: w})
	}
	return segments, nil
}

func (m *mockCutter) Calls() []cutCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]cutCall(nil), m.calls...)
}

// ---------------------------------------------------------------------------
// mockTranscriberFactory / mockTranscriber
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	mu          sync.Mutex
	transcriber *mockTranscriber
	apiKeys     []string
}

func (m *mockTranscriberFactory) NewTranscriber(apiKey string, _ *slog.Logger) transcribe.Transcriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKeys = append(m.apiKeys, apiKey)
	return m.transcriber
}

func (m *mockTranscriberFactory) APIKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.apiKeys...)
}

type transcribeCall struct {
	Path string
	Opts transcribe.Options
}

// mockTranscriber returns "transcript of <path>" unless TranscribeFunc
// overrides it.
type mockTranscriber struct {
	mu             sync.Mutex
	TranscribeFunc func(ctx context.Context, path string, opts transcribe.Options) (string, error)
	calls          []transcribeCall
}

func (m *mockTranscriber) Transcribe(ctx context.Context, path string, opts transcribe.Options) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, transcribeCall{Path: path, Opts: opts})
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, path, opts)
	}
	return "transcript of " + path, nil
}

func (m *mockTranscriber) Calls() []transcribeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transcribeCall(nil), m.calls...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver         = (*mockFFmpegResolver)(nil)
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ ProberFactory          = (*mockProberFactory)(nil)
	_ audio.Prober           = (*mockProber)(nil)
	_ CutterFactory          = (*mockCutterFactory)(nil)
	_ Cutter                 = (*mockCutter)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
)
