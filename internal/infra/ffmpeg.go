package infra

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/voxsplit/backend/internal/models"
)

// FFmpegToolchain shells out to ffprobe/ffmpeg with fixed argument contracts.
// It implements the probe, silence-detection and cut ports.
type FFmpegToolchain struct{}

func NewFFmpegToolchain() *FFmpegToolchain { return &FFmpegToolchain{} }

func (t *FFmpegToolchain) Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	raw := strings.TrimSpace(string(out))
	dur, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparsable duration %q", path, raw)
	}
	return dur, nil
}

var (
	reSilenceStart = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	reSilenceEnd   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)\s*\|\s*silence_duration:\s*([0-9.]+)`)
)

func (t *FFmpegToolchain) DetectSilence(ctx context.Context, path string, noiseFloorDb, minSilenceSec float64) ([]models.SilenceInterval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseFloorDb, minSilenceSec)

	// silencedetect reports on stderr; the null muxer discards the decode.
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-nostats",
		"-i", path,
		"-af", filter,
		"-f", "null", "-",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg silencedetect %s: %v: %s", path, err, trim(string(out), 180))
	}

	return parseSilence(string(out)), nil
}

// parseSilence pairs silence_start/silence_end lines from ffmpeg's stderr
// into ordered intervals. An unmatched trailing silence_start (silence
// running into EOF) is dropped.
func parseSilence(out string) []models.SilenceInterval {
	var (
		intervals []models.SilenceInterval
		start     float64
		open      bool
	)
	for _, line := range strings.Split(out, "\n") {
		if m := reSilenceStart.FindStringSubmatch(line); m != nil {
			start, _ = strconv.ParseFloat(m[1], 64)
			if start < 0 {
				start = 0
			}
			open = true
			continue
		}
		if m := reSilenceEnd.FindStringSubmatch(line); m != nil && open {
			end, _ := strconv.ParseFloat(m[1], 64)
			dur, _ := strconv.ParseFloat(m[2], 64)
			intervals = append(intervals, models.SilenceInterval{Start: start, End: end, Duration: dur})
			open = false
		}
	}
	return intervals
}

func (t *FFmpegToolchain) Cut(ctx context.Context, src, dst string, start, end float64) (int64, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-loglevel", "error",
		"-i", src,
		"-ss", formatTime(start),
		"-to", formatTime(end),
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", "64k",
		"-ac", "1",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return 0, fmt.Errorf("ffmpeg cut %s [%s-%s]: %v: %s",
			src, formatTime(start), formatTime(end), err, trim(string(out), 180))
	}

	fi, err := os.Stat(dst)
	if err != nil {
		return 0, fmt.Errorf("stat cut output: %w", err)
	}
	return fi.Size(), nil
}

// formatTime renders seconds as HH:MM:SS.mmm for ffmpeg -ss/-to. Rounding
// happens once, on the total milliseconds, so a value like 59.9996 carries
// into the minutes field instead of rendering an invalid :60.000.
func formatTime(sec float64) string {
	ms := int64(math.Round(sec * 1000))
	h := ms / 3600000
	m := ms / 60000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}
