package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alnah/audio-splitter/internal/ffmpeg"
	"github.com/alnah/audio-splitter/internal/format"
	"github.com/alnah/audio-splitter/internal/plan"
)

// Compile-time interface implementation check.
var _ Prober = (*FFprobeProber)(nil)

// Metadata describes an audio file.
type Metadata struct {
	Path       string
	Codec      string // Codec of the first audio stream, e.g. "mp3".
	FormatName string // Container format as reported by FFmpeg, e.g. "mp3" or "mov,mp4,m4a".
	Duration   time.Duration
	BitRate    int64 // Bits per second.
	SampleRate int   // Hz, 0 when unknown.
	Channels   int   // 0 when unknown.
	Size       int64 // Bytes on disk.
}

// WithinLimits reports whether the file as stored satisfies l.
// It uses the size on disk rather than a bitrate estimate.
func (m Metadata) WithinLimits(l plan.Limits) bool {
	return m.Size <= int64(l.MaxBytes) && m.Duration <= l.MaxDuration
}

// String returns a one-line summary for logging.
func (m Metadata) String() string {
	return fmt.Sprintf("%s: %s, %s, %s, %s",
		m.Path, m.Codec, format.Duration(m.Duration), format.Bitrate(m.BitRate), format.Size(m.Size))
}

// Prober reads audio metadata.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// FFprobeProber reads metadata with ffprobe, or by parsing ffmpeg's banner
// when ffprobe is unavailable.
type FFprobeProber struct {
	ffprobePath string
	ffmpegPath  string
	logger      *slog.Logger

	// Injectable dependencies (defaults to OS implementations).
	cmd  commandRunner
	stat fileStatter
}

// ProberOption configures an FFprobeProber.
type ProberOption func(*FFprobeProber)

// WithProberCommandRunner sets the command runner.
func WithProberCommandRunner(r commandRunner) ProberOption {
	return func(p *FFprobeProber) { p.cmd = r }
}

// WithProberFileStatter sets the file statter.
func WithProberFileStatter(s fileStatter) ProberOption {
	return func(p *FFprobeProber) { p.stat = s }
}

// WithProberLogger sets the logger for tool invocations.
func WithProberLogger(l *slog.Logger) ProberOption {
	return func(p *FFprobeProber) { p.logger = l }
}

// NewFFprobeProber creates a prober from resolved tool paths.
// At least one of tools.FFprobe and tools.FFmpeg must be set.
func NewFFprobeProber(tools ffmpeg.Tools, opts ...ProberOption) (*FFprobeProber, error) {
	if tools.FFprobe == "" && tools.FFmpeg == "" {
		return nil, fmt.Errorf("no ffprobe or ffmpeg path: %w", ffmpeg.ErrNotFound)
	}
	p := &FFprobeProber{
		ffprobePath: tools.FFprobe,
		ffmpegPath:  tools.FFmpeg,
		logger:      slog.New(slog.DiscardHandler),
		cmd:         osCommandRunner{},
		stat:        osFileStatter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Probe returns the metadata of the audio file at path.
//
// The bitrate comes from the container when reported, then from the first
// audio stream, then from size*8/duration.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (Metadata, error) {
	info, err := p.stat.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Metadata{}, fmt.Errorf("%w: %s: %v", ErrProbeFailed, path, err)
	}
	if info.IsDir() {
		return Metadata{}, fmt.Errorf("%w: %s is a directory", ErrProbeFailed, path)
	}

	var md Metadata
	if p.ffprobePath != "" {
		md, err = p.probeJSON(ctx, path)
	} else {
		md, err = p.probeBanner(ctx, path)
	}
	if err != nil {
		return Metadata{}, err
	}

	md.Path = path
	md.Size = info.Size()
	if md.Duration <= 0 {
		return Metadata{}, fmt.Errorf("%w: %s: duration not reported", ErrProbeFailed, path)
	}
	if md.BitRate <= 0 {
		md.BitRate = bitrateFromSize(md.Size, md.Duration)
	}
	if md.BitRate <= 0 {
		return Metadata{}, fmt.Errorf("%w: %s: bitrate not reported", ErrProbeFailed, path)
	}

	p.logger.Debug("probed", "path", path, "codec", md.Codec, "duration", md.Duration, "bitrate", md.BitRate)
	return md, nil
}

// bitrateFromSize returns floor(size * 8 / seconds).
func bitrateFromSize(size int64, d time.Duration) int64 {
	if size <= 0 || d <= 0 {
		return 0
	}
	bits := decimal.NewFromInt(size).Mul(decimal.NewFromInt(8)).Mul(decimal.NewFromInt(int64(time.Second)))
	q, _ := bits.QuoRem(decimal.NewFromInt(int64(d)), 0)
	return q.IntPart()
}

// ---------------------------------------------------------------------------
// ffprobe JSON
// ---------------------------------------------------------------------------

// probeResult is the subset of "ffprobe -of json" output we read.
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

func ffprobeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_format", "-show_streams",
		"-select_streams", "a:0",
		"-of", "json",
		path,
	}
}

func (p *FFprobeProber) probeJSON(ctx context.Context, path string) (Metadata, error) {
	args := ffprobeArgs(path)
	p.logger.Debug("exec", "cmd", p.ffprobePath, "args", strings.Join(args, " "))

	out, err := p.cmd.Output(ctx, p.ffprobePath, args)
	if err != nil {
		if ctx.Err() != nil {
			return Metadata{}, ctx.Err()
		}
		return Metadata{}, fmt.Errorf("%w: ffprobe %s: %v", ErrProbeFailed, path, err)
	}
	return parseProbeJSON(out)
}

// parseProbeJSON converts ffprobe JSON into Metadata. Size and Path are left
// for the caller.
func parseProbeJSON(data []byte) (Metadata, error) {
	var res probeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return Metadata{}, fmt.Errorf("%w: parse ffprobe output: %v", ErrProbeFailed, err)
	}

	var stream probeStream
	for _, s := range res.Streams {
		if s.CodecType == "" || strings.EqualFold(s.CodecType, "audio") {
			stream = s
			break
		}
	}
	if stream.CodecName == "" {
		return Metadata{}, fmt.Errorf("%w: no audio stream", ErrProbeFailed)
	}

	md := Metadata{
		Codec:      stream.CodecName,
		FormatName: res.Format.FormatName,
		Channels:   stream.Channels,
	}
	if d, ok := parseDecimal(res.Format.Duration); ok {
		md.Duration = plan.Seconds(d)
	} else if d, ok := parseDecimal(stream.Duration); ok {
		md.Duration = plan.Seconds(d)
	}
	if b, ok := parseDecimal(res.Format.BitRate); ok {
		md.BitRate = b.IntPart()
	} else if b, ok := parseDecimal(stream.BitRate); ok {
		md.BitRate = b.IntPart()
	}
	if r, ok := parseDecimal(stream.SampleRate); ok {
		md.SampleRate = int(r.IntPart())
	}
	return md, nil
}

// parseDecimal parses an ffprobe numeric field. Empty, "N/A" and
// non-positive values are reported as absent.
func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// ---------------------------------------------------------------------------
// ffmpeg banner fallback
// ---------------------------------------------------------------------------

var (
	// Duration: 01:00:00.00, start: 0.000000, bitrate: 228 kb/s
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	bitrateRe  = regexp.MustCompile(`Duration:.*bitrate:\s*(\d+)\s*kb/s`)
	// Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.m4a':
	inputRe = regexp.MustCompile(`Input #\d+, (.+?), from `)
	// Stream #0:0: Audio: mp3 (mp3float), 44100 Hz, stereo, fltp, 228 kb/s
	audioRe = regexp.MustCompile(`Stream #\d+:\d+.*?: Audio: (.*)`)
)

func ffmpegProbeArgs(path string) []string {
	return []string{"-hide_banner", "-i", path, "-f", "null", "-"}
}

func (p *FFprobeProber) probeBanner(ctx context.Context, path string) (Metadata, error) {
	args := ffmpegProbeArgs(path)
	p.logger.Debug("exec", "cmd", p.ffmpegPath, "args", strings.Join(args, " "))

	out, err := p.cmd.CombinedOutput(ctx, p.ffmpegPath, args)
	if ctx.Err() != nil {
		return Metadata{}, ctx.Err()
	}
	md, perr := parseFFmpegBanner(string(out))
	if perr != nil {
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: ffmpeg %s: %v\nOutput: %s", ErrProbeFailed, path, err, strings.TrimSpace(string(out)))
		}
		return Metadata{}, perr
	}
	return md, nil
}

// parseFFmpegBanner extracts metadata from the stream summary ffmpeg prints
// to stderr for its input.
func parseFFmpegBanner(output string) (Metadata, error) {
	m := durationRe.FindStringSubmatch(output)
	if m == nil {
		return Metadata{}, fmt.Errorf("%w: could not parse duration from ffmpeg output", ErrProbeFailed)
	}
	d, err := parseTimeComponents(m[1], m[2], m[3])
	if err != nil {
		return Metadata{}, err
	}

	md := Metadata{Duration: d}
	if m := bitrateRe.FindStringSubmatch(output); m != nil {
		if kbps, ok := parseDecimal(m[1]); ok {
			md.BitRate = kbps.IntPart() * 1000
		}
	}
	if m := inputRe.FindStringSubmatch(output); m != nil {
		md.FormatName = m[1]
	}
	if m := audioRe.FindStringSubmatch(output); m != nil {
		parseAudioLine(strings.TrimSpace(m[1]), &md)
	}
	return md, nil
}

// parseAudioLine reads "mp3 (mp3float), 44100 Hz, stereo, fltp, 228 kb/s".
func parseAudioLine(line string, md *Metadata) {
	fields := strings.Split(line, ", ")
	if codec, _, _ := strings.Cut(fields[0], " "); codec != "" {
		md.Codec = codec
	}
	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		switch {
		case strings.HasSuffix(f, " Hz"):
			if r, ok := parseDecimal(strings.TrimSuffix(f, " Hz")); ok {
				md.SampleRate = int(r.IntPart())
			}
		case strings.Contains(f, " kb/s"):
			if md.BitRate == 0 {
				num, _, _ := strings.Cut(f, " kb/s")
				if kbps, ok := parseDecimal(num); ok {
					md.BitRate = kbps.IntPart() * 1000
				}
			}
		case md.Channels == 0:
			md.Channels = channelCount(f)
		}
	}
}

// channelCount maps an FFmpeg channel layout to a channel count, or 0.
func channelCount(layout string) int {
	switch layout {
	case "mono":
		return 1
	case "stereo", "2 channels":
		return 2
	case "2.1", "3.0":
		return 3
	case "quad", "4.0":
		return 4
	case "5.0", "5.0(side)":
		return 5
	case "5.1", "5.1(side)":
		return 6
	case "7.1":
		return 8
	}
	var n int
	if _, err := fmt.Sscanf(layout, "%d channels", &n); err == nil {
		return n
	}
	return 0
}

// parseTimeComponents converts HH, MM and SS.fraction strings to a Duration.
func parseTimeComponents(hours, minutes, seconds string) (time.Duration, error) {
	h, err := decimal.NewFromString(hours)
	if err != nil {
		return 0, fmt.Errorf("%w: hours %q: %v", ErrProbeFailed, hours, err)
	}
	m, err := decimal.NewFromString(minutes)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes %q: %v", ErrProbeFailed, minutes, err)
	}
	s, err := decimal.NewFromString(seconds)
	if err != nil {
		return 0, fmt.Errorf("%w: seconds %q: %v", ErrProbeFailed, seconds, err)
	}
	total := h.Mul(decimal.NewFromInt(3600)).Add(m.Mul(decimal.NewFromInt(60))).Add(s)
	return plan.Seconds(total), nil
}
