package audio_test

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/alnah/audio-splitter/internal/audio"
)

// Compile-time interface checks.
var (
	_ audio.CommandRunner = (*mockCommandRunner)(nil)
	_ audio.FileStatter   = (*mockFileStatter)(nil)
)

// ---------------------------------------------------------------------------
// mockCommandRunner
// ---------------------------------------------------------------------------

type mockCall struct {
	name string
	args []string
}

type mockCommandRunner struct {
	mu           sync.Mutex
	outputFunc   func(ctx context.Context, name string, args []string) ([]byte, error)
	combinedFunc func(ctx context.Context, name string, args []string) ([]byte, error)
	calls        []mockCall
}

func (m *mockCommandRunner) record(name string, args []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mockCall{name: name, args: append([]string(nil), args...)})
}

func (m *mockCommandRunner) Output(ctx context.Context, name string, args []string) ([]byte, error) {
	m.record(name, args)
	if m.outputFunc != nil {
		return m.outputFunc(ctx, name, args)
	}
	return nil, nil
}

func (m *mockCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	m.record(name, args)
	if m.combinedFunc != nil {
		return m.combinedFunc(ctx, name, args)
	}
	return nil, nil
}

func (m *mockCommandRunner) Calls() []mockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockCall(nil), m.calls...)
}

// fakeFFmpeg returns a CombinedOutput func that writes content to the output
// path (the last argument), as a successful stream copy would.
func fakeFFmpeg(content []byte) func(ctx context.Context, name string, args []string) ([]byte, error) {
	return func(ctx context.Context, name string, args []string) ([]byte, error) {
		return nil, os.WriteFile(args[len(args)-1], content, 0o644)
	}
}

// ---------------------------------------------------------------------------
// mockFileStatter
// ---------------------------------------------------------------------------

type mockFileStatter struct {
	size  int64
	isDir bool
	err   error
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &mockFileInfo{size: m.size, isDir: m.isDir}, nil
}

type mockFileInfo struct {
	size  int64
	isDir bool
}

func (m *mockFileInfo) Name() string       { return "mock.mp3" }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return 0644 }
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }
