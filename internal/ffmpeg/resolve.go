package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
)

const (
	ffmpegName       = "ffmpeg"
	ffprobeName      = "ffprobe"
	binaryExtWindows = ".exe"

	// minFFmpegMajorVersion is the oldest release known to stream-copy
	// seeks accurately with -ss after -i.
	minFFmpegMajorVersion = 4
)

// Environment variables overriding tool lookup.
const (
	envFFmpegPath  = "FFMPEG_PATH"
	envFFprobePath = "FFPROBE_PATH"
)

// Tools holds the resolved tool paths.
// FFprobe is empty when no ffprobe binary is available; callers then fall
// back to parsing ffmpeg output.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// ---------------------------------------------------------------------------
// Resolver - testable tool resolution with dependency injection
// ---------------------------------------------------------------------------

// Resolver finds the ffmpeg and ffprobe binaries.
type Resolver struct {
	stat fileStatter
	env  envProvider
	goos string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(res *Resolver) { res.stat = s }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(res *Resolver) { res.env = e }
}

// WithPlatform sets the target OS (for testing cross-platform behavior).
func WithPlatform(goos string) ResolverOption {
	return func(res *Resolver) { res.goos = goos }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		stat: osFileStatter{},
		env:  osEnvProvider{},
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. FFMPEG_PATH environment variable (error if set but invalid)
//  2. System PATH
//
// and ffprobe using:
//  1. FFPROBE_PATH environment variable (error if set but invalid)
//  2. The directory holding the resolved ffmpeg
//  3. System PATH
//
// A missing ffprobe is not an error.
func (r *Resolver) Resolve() (Tools, error) {
	ffmpegPath, err := r.resolveFFmpeg()
	if err != nil {
		return Tools{}, err
	}
	ffprobePath, err := r.resolveFFprobe(ffmpegPath)
	if err != nil {
		return Tools{}, err
	}
	return Tools{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func (r *Resolver) resolveFFmpeg() (string, error) {
	if envPath := r.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.env.LookPath(ffmpegName); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: not found in PATH\n\n%s", ErrNotFound, r.manualInstallInstructions())
}

func (r *Resolver) resolveFFprobe(ffmpegPath string) (string, error) {
	if envPath := r.env.Getenv(envFFprobePath); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFFprobePath, envPath)
		}
		return envPath, nil
	}

	sibling := filepath.Join(filepath.Dir(ffmpegPath), r.binaryName(ffprobeName))
	if _, err := r.stat.Stat(sibling); err == nil {
		return sibling, nil
	}

	if path, err := r.env.LookPath(ffprobeName); err == nil {
		return path, nil
	}
	return "", nil
}

func (r *Resolver) binaryName(base string) string {
	if r.goos == "windows" {
		return base + binaryExtWindows
	}
	return base
}

// manualInstallInstructions returns platform-specific instructions.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install FFmpeg (ffmpeg and ffprobe):
  brew install ffmpeg

Or set FFMPEG_PATH to your ffmpeg binary.`
	case "linux":
		return `To install FFmpeg (ffmpeg and ffprobe):
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH to your ffmpeg binary.`
	case "windows":
		return `To install FFmpeg (ffmpeg and ffprobe):
  winget install ffmpeg

Or set FFMPEG_PATH to your ffmpeg.exe.`
	default:
		return `To install FFmpeg, download it from https://ffmpeg.org/download.html
Or set FFMPEG_PATH to your ffmpeg binary.`
	}
}

// ---------------------------------------------------------------------------
// VersionChecker
// ---------------------------------------------------------------------------

// versionPattern matches "ffmpeg version 6.1.1", "ffprobe version n7.0" and
// similar first lines.
var versionPattern = regexp.MustCompile(`^\S+ version n?(\d+)`)

// VersionChecker verifies FFmpeg version requirements.
type VersionChecker struct {
	executor *Executor
	stderr   io.Writer
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor for running FFmpeg.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionStderr sets the writer for warning messages.
func WithVersionStderr(w io.Writer) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.stderr = w }
}

// NewVersionChecker creates a VersionChecker with the given options.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: NewExecutor(),
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// MajorVersion returns the major version reported by "<tool> -version".
func (vc *VersionChecker) MajorVersion(ctx context.Context, toolPath string) (int, error) {
	output, err := vc.executor.RunOutput(ctx, toolPath, []string{"-version"})
	if err != nil && output == "" {
		return 0, fmt.Errorf("run %s -version: %w", filepath.Base(toolPath), err)
	}
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("unrecognized version output from %s", filepath.Base(toolPath))
	}
	return strconv.Atoi(m[1])
}

// Check verifies that ffmpeg meets minimum version requirements.
// Prints a warning to stderr if version is below minimum but doesn't fail.
// Returns true if version was successfully checked, false if parsing failed.
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) bool {
	major, err := vc.MajorVersion(ctx, ffmpegPath)
	if err != nil {
		return false
	}
	if major < minFFmpegMajorVersion {
		fmt.Fprintf(vc.stderr, "Warning: ffmpeg version %d detected, version %d+ recommended\n",
			major, minFFmpegMajorVersion)
	}
	return true
}
