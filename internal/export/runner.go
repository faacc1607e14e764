package export

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/Tuguberk/ai-subtitle-creator/internal/ffmpeg"
	"github.com/Tuguberk/ai-subtitle-creator/internal/logging"
)

var commandContext = exec.CommandContext

// Spec describes one render the runner should perform.
type Spec struct {
	InputPath    string
	SubtitlePath string
	OutputPath   string
	// total source duration, used for progress percentage math
	Duration time.Duration
	// target dimensions; zero keeps the source size
	Width  int
	Height int
	// video encoder, libx264 when empty
	Encoder string
}

// ProgressUpdate captures ffmpeg progress events.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// Handle follows one running render.
type Handle interface {
	// Progress streams updates until the process ends; the channel is
	// closed afterwards.
	Progress() <-chan ProgressUpdate
	// Wait blocks until the process ends and returns its error.
	Wait() error
	// Cancel kills the process. Wait reports context.Canceled.
	Cancel()
}

// Runner starts renders. The production implementation shells out to
// ffmpeg; tests substitute a fake.
type Runner interface {
	Start(ctx context.Context, spec Spec) (Handle, error)
}

// FFmpegRunner burns subtitles into video by running ffmpeg with
// machine-readable progress on stdout.
type FFmpegRunner struct {
	log *logging.Logger
}

func NewFFmpegRunner(log *logging.Logger) *FFmpegRunner {
	if log == nil {
		log = logging.NewNop()
	}
	return &FFmpegRunner{log: log}
}

func (r *FFmpegRunner) Start(ctx context.Context, spec Spec) (Handle, error) {
	if spec.InputPath == "" || spec.OutputPath == "" {
		return nil, fmt.Errorf("runner: input and output paths required")
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	vf := fmt.Sprintf("ass='%s'", escapeFilterPath(spec.SubtitlePath))
	if spec.Width > 0 && spec.Height > 0 {
		vf = fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,%s",
			spec.Width, spec.Height, spec.Width, spec.Height, vf,
		)
	}
	encoder := spec.Encoder
	if encoder == "" {
		encoder = "libx264"
	}

	args := ffmpeg.Input(spec.InputPath).
		Output(spec.OutputPath, ffmpeg.KwArgs{
			"vf":       vf,
			"c:v":      encoder,
			"c:a":      "copy",
			"progress": "pipe:1",
			"nostats":  "",
			"v":        "error",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Compile().Args

	runCtx, cancel := context.WithCancel(ctx)
	cmd := commandContext(runCtx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	r.log.Infow("ffmpeg started",
		"input", spec.InputPath,
		"output", spec.OutputPath,
		"filter", vf,
	)

	h := &ffmpegHandle{
		cancel:   cancel,
		progress: make(chan ProgressUpdate, 16),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer close(h.progress)
		defer cancel()

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if update, ok := parseProgressLine(line, spec.Duration); ok {
				h.send(update)
			}
		}

		err := cmd.Wait()
		if runCtx.Err() != nil {
			h.err = context.Canceled
			return
		}
		if err != nil {
			h.err = fmt.Errorf("ffmpeg render failed: %w", err)
		}
	}()

	return h, nil
}

type ffmpegHandle struct {
	cancel   context.CancelFunc
	progress chan ProgressUpdate
	done     chan struct{}
	err      error
}

func (h *ffmpegHandle) Progress() <-chan ProgressUpdate {
	return h.progress
}

func (h *ffmpegHandle) Wait() error {
	<-h.done
	return h.err
}

func (h *ffmpegHandle) Cancel() {
	h.cancel()
}

// send drops updates when the consumer lags; the final state comes from
// Wait, not the progress stream
func (h *ffmpegHandle) send(update ProgressUpdate) {
	select {
	case h.progress <- update:
	default:
	}
}

// parseProgressLine reads the key=value pairs ffmpeg emits under
// -progress pipe:1. Despite its name out_time_ms carries microseconds.
func parseProgressLine(line string, total time.Duration) (ProgressUpdate, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return ProgressUpdate{}, false
	}

	switch key {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return ProgressUpdate{}, false
		}
		elapsed := time.Duration(us) * time.Microsecond
		if total <= 0 {
			return ProgressUpdate{Message: "rendering"}, true
		}
		percent := elapsed.Seconds() / total.Seconds() * 100
		if percent > 99.9 {
			percent = 99.9
		}
		return ProgressUpdate{Percent: percent, Message: "rendering"}, true
	case "progress":
		if value == "end" {
			return ProgressUpdate{Percent: 100, Message: "render complete"}, true
		}
	}
	return ProgressUpdate{}, false
}

// escapeFilterPath quotes a path for use inside an ffmpeg filter
// argument, where colons and quotes are syntax.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, `'`, `\'`)
	path = strings.ReplaceAll(path, `:`, `\:`)
	return path
}
