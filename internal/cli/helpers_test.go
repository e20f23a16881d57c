package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/alnah/audio-splitter/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	proberFactory  *mockProberFactory
	prober         *mockProber
	cutterFactory  *mockCutterFactory
	cutter         *mockCutter
	transcriber    *mockTranscriberFactory
	transcribeMock *mockTranscriber
}

func newTestMocks() *testMocks {
	prober := newMockProber()
	cutter := &mockCutter{}
	transcriber := &mockTranscriber{}
	return &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		proberFactory:  &mockProberFactory{prober: prober},
		prober:         prober,
		cutterFactory:  &mockCutterFactory{cutter: cutter},
		cutter:         cutter,
		transcriber:    &mockTranscriberFactory{transcriber: transcriber},
		transcribeMock: transcriber,
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

type testEnvOptions struct {
	getenv func(string) string
	mocks  *testMocks
}

type testEnvOption func(*testEnvOptions)

func withGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

// testHarness bundles an Env with its captured output and mocks.
type testHarness struct {
	env    *Env
	stdout *syncBuffer
	stderr *syncBuffer
	mocks  *testMocks
}

// newTestEnv creates an Env whose dependencies are all mocks and whose
// output is captured. The environment holds an OpenAI key by default.
func newTestEnv(opts ...testEnvOption) *testHarness {
	o := &testEnvOptions{
		getenv: staticEnv(map[string]string{EnvOpenAIAPIKey: "sk-test"}),
		mocks:  newTestMocks(),
	}
	for _, opt := range opts {
		opt(o)
	}

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Env{
		Stdout:             stdout,
		Stderr:             stderr,
		Getenv:             o.getenv,
		IsTerminal:         func(io.Writer) bool { return false },
		Logger:             slog.New(slog.DiscardHandler),
		FFmpegResolver:     o.mocks.ffmpegResolver,
		ConfigLoader:       o.mocks.configLoader,
		ProberFactory:      o.mocks.proberFactory,
		CutterFactory:      o.mocks.cutterFactory,
		TranscriberFactory: o.mocks.transcriber,
	}
	return &testHarness{env: env, stdout: stdout, stderr: stderr, mocks: o.mocks}
}

// staticEnv returns a Getenv function backed by vars.
func staticEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

// withConfig makes the mock loader return cfg.
func (h *testHarness) withConfig(cfg config.Config) *testHarness {
	h.mocks.configLoader.LoadFunc = func() (config.Config, error) { return cfg, nil }
	return h
}

// run executes cmd with args the way the root command would.
func run(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	if args == nil {
		args = []string{} // nil would make cobra read os.Args
	}
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(context.Background())
}

// createTestAudioFile creates a placeholder audio file named name in dir.
func createTestAudioFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake audio content"), 0o600); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

// assertNotExists fails when path exists.
func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (stat error: %v)", path, err)
	}
}
