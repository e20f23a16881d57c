package audio

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/alnah/audio-splitter/internal/ffmpeg"
	"github.com/alnah/audio-splitter/internal/format"
	"github.com/alnah/audio-splitter/internal/plan"
)

const (
	outputDirPerm  = 0o750
	outputFilePerm = 0o644
)

// Segment is one file written by Cut.
type Segment struct {
	Path   string
	Window plan.Window
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("%s (%s)", filepath.Base(s.Path), s.Window)
}

// ProgressFunc is called after each segment is written.
type ProgressFunc func(done, total int)

// Cutter writes the windows of a plan to disk with FFmpeg stream copy.
type Cutter struct {
	ffmpegPath string
	lockDir    string
	progress   ProgressFunc
	logger     *slog.Logger
	newID      func() string

	// Injectable dependencies (defaults to OS implementations).
	cmd commandRunner
}

// CutterOption configures a Cutter.
type CutterOption func(*Cutter)

// WithCutterCommandRunner sets the command runner.
func WithCutterCommandRunner(r commandRunner) CutterOption {
	return func(c *Cutter) { c.cmd = r }
}

// WithLockDir sets the directory holding lock files. Default: os.TempDir().
func WithLockDir(dir string) CutterOption {
	return func(c *Cutter) { c.lockDir = dir }
}

// WithProgress sets a callback invoked after each segment.
func WithProgress(fn ProgressFunc) CutterOption {
	return func(c *Cutter) { c.progress = fn }
}

// WithCutterLogger sets the logger for tool invocations.
func WithCutterLogger(l *slog.Logger) CutterOption {
	return func(c *Cutter) { c.logger = l }
}

// NewCutter creates a Cutter that runs the ffmpeg binary at ffmpegPath.
func NewCutter(ffmpegPath string, opts ...CutterOption) (*Cutter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	c := &Cutter{
		ffmpegPath: ffmpegPath,
		lockDir:    os.TempDir(),
		logger:     slog.New(slog.DiscardHandler),
		newID:      uuid.NewString,
		cmd:        osCommandRunner{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cut writes every window of p, cut from src, into outDir using naming.
// An empty outDir means the directory of src.
//
// A whole-file plan is served by a verified byte copy of src. Each output is
// written to a hidden temporary file and renamed into place once complete.
// On failure every output written by this call is removed, so Cut returns
// either all segments or none.
func (c *Cutter) Cut(ctx context.Context, src string, p plan.Plan, naming Naming, outDir string) ([]Segment, error) {
	if err := p.Check(p.Total()); err != nil {
		return nil, err
	}
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, src)
		}
		return nil, fmt.Errorf("%w: %v", ErrCutFailed, err)
	}
	if outDir == "" {
		outDir = filepath.Dir(src)
	}
	if err := os.MkdirAll(outDir, outputDirPerm); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %v", ErrCutFailed, err)
	}

	unlock, err := c.lock(outDir, src)
	if err != nil {
		return nil, err
	}
	defer unlock()

	segments := make([]Segment, 0, len(p))
	for _, w := range p {
		if err := ctx.Err(); err != nil {
			removeSegments(segments)
			return nil, err
		}

		dst := naming.Path(src, outDir, w.Index)
		c.logger.Debug("cut", "window", w.String(), "output", dst)
		if err := c.cutOne(ctx, src, dst, w, p.Whole()); err != nil {
			removeSegments(segments)
			return nil, err
		}

		segments = append(segments, Segment{Path: dst, Window: w})
		if c.progress != nil {
			c.progress(len(segments), len(p))
		}
	}
	return segments, nil
}

// cutOne writes window w of src to dst through a temporary sibling.
func (c *Cutter) cutOne(ctx context.Context, src, dst string, w plan.Window, whole bool) error {
	tmp := c.tempPath(dst)

	var err error
	if whole {
		err = copyVerified(src, tmp)
	} else {
		err = c.extract(ctx, src, tmp, w)
	}
	if err != nil {
		_ = os.Remove(tmp) // best-effort cleanup; original error takes precedence
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: move %s into place: %v", ErrCutFailed, filepath.Base(dst), err)
	}
	return nil
}

// tempPath returns a hidden sibling of dst keeping its extension, so FFmpeg
// still infers the output container from it.
func (c *Cutter) tempPath(dst string) string {
	stem, ext := splitName(dst)
	return filepath.Join(filepath.Dir(dst), fmt.Sprintf(".%s.%s%s", stem, c.newID(), ext))
}

// cutArgs returns the FFmpeg arguments for a stream copy of w.
func cutArgs(src, dst string, w plan.Window) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", src,
		"-ss", format.Timestamp(w.Start),
		"-t", format.Timestamp(w.Duration()),
		"-c", "copy",
		dst,
	}
}

func (c *Cutter) extract(ctx context.Context, src, dst string, w plan.Window) error {
	args := cutArgs(src, dst, w)
	c.logger.Debug("exec", "cmd", c.ffmpegPath, "args", strings.Join(args, " "))

	output, err := c.cmd.CombinedOutput(ctx, c.ffmpegPath, args)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%w: ffmpeg failed to create %s: %v\nOutput: %s",
			ErrCutFailed, filepath.Base(dst), err, strings.TrimSpace(string(output)))
	}

	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: ffmpeg produced no output for window %d", ErrCutFailed, w.Index)
	}
	return nil
}

// copyVerified copies src to dst and checks both digests match.
func copyVerified(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- src is an input chosen by the user
	if err != nil {
		return fmt.Errorf("%w: open source: %v", ErrCutFailed, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, outputFilePerm) // #nosec G304 -- dst is built internally
	if err != nil {
		return fmt.Errorf("%w: create copy: %v", ErrCutFailed, err)
	}

	h := blake3.New(32, nil)
	_, err = io.Copy(out, io.TeeReader(in, h))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: copy source: %v", ErrCutFailed, err)
	}
	srcSum := hex.EncodeToString(h.Sum(nil))

	dstSum, err := Digest(dst)
	if err != nil {
		return fmt.Errorf("%w: verify copy: %v", ErrCutFailed, err)
	}
	if srcSum != dstSum {
		return fmt.Errorf("%w: copy of %s does not match source (blake3 %s != %s)",
			ErrCutFailed, filepath.Base(src), dstSum, srcSum)
	}
	return nil
}

// lockPath returns the lock file guarding cuts of src into outDir.
func (c *Cutter) lockPath(outDir, src string) (string, error) {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("%w: resolve output directory: %v", ErrCutFailed, err)
	}
	stem, _ := splitName(src)
	key, err := digestReader(strings.NewReader(filepath.Join(abs, stem)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCutFailed, err)
	}
	return filepath.Join(c.lockDir, "audiosplit-"+key[:16]+".lock"), nil
}

// lock takes the lock for src in outDir and returns its release function.
func (c *Cutter) lock(outDir, src string) (func(), error) {
	path, err := c.lockPath(outDir, src)
	if err != nil {
		return nil, err
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock: %v", ErrCutFailed, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is already being cut into %s", ErrLocked, filepath.Base(src), outDir)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			c.logger.Warn("failed to release lock", "path", path, "error", err)
		}
	}, nil
}

// removeSegments deletes outputs written so far.
func removeSegments(segments []Segment) {
	for _, s := range segments {
		_ = os.Remove(s.Path) // best-effort cleanup; files may already be gone
	}
}
