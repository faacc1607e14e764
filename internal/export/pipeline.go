package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tuguberk/ai-subtitle-creator/internal/codec"
	"github.com/Tuguberk/ai-subtitle-creator/internal/logging"
	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
	"github.com/Tuguberk/ai-subtitle-creator/internal/video"
)

// Request describes what to export. Segments feed plain SRT output,
// Events feed styled ASS output and burn-in.
type Request struct {
	Kind       Kind
	Source     string
	OutputPath string
	Segments   []segment.Segment
	Events     []theme.StyledEvent
	Title      string
	// video encoder for burn-in, libx264 when empty
	Encoder string
	// render at half resolution, used for quick previews
	Preview bool
}

// terminal Failed errors wrap one of these so callers can tell a dead
// render process from an unusable output file with errors.Is
var (
	ErrProcessFailure = errors.New("export process failed")
	ErrIOFailure      = errors.New("export output unavailable")
)

// ProbeFunc matches video.Probe; substituted in tests.
type ProbeFunc func(ctx context.Context, path string) (*video.Info, error)

// Pipeline runs export jobs one at a time. Submitting while a job is
// active cancels the active job first, so the latest request always
// wins. Each job reports monotonic progress and exactly one terminal
// state; failed and cancelled jobs leave no partial output behind.
type Pipeline struct {
	runner Runner
	probe  ProbeFunc
	log    *logging.Logger

	finalizeRetries int
	finalizeDelay   time.Duration

	mu     sync.Mutex
	active *jobState
}

func NewPipeline(runner Runner, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	return &Pipeline{
		runner:          runner,
		probe:           video.Probe,
		log:             log,
		finalizeRetries: 10,
		finalizeDelay:   100 * time.Millisecond,
	}
}

// Submit starts a new export job and returns immediately. Progress is
// delivered on the given callback from the job's goroutine.
func (p *Pipeline) Submit(ctx context.Context, req Request, onProgress func(Progress)) (Job, error) {
	if req.OutputPath == "" {
		return Job{}, fmt.Errorf("export: output path required")
	}
	if req.Kind == KindBurnIn {
		if req.Source == "" {
			return Job{}, fmt.Errorf("export: burn-in requires a source video")
		}
		if len(req.Events) == 0 {
			return Job{}, fmt.Errorf("export: burn-in requires styled events")
		}
	}
	if req.Kind == KindSubtitleFile {
		switch ext := strings.ToLower(filepath.Ext(req.OutputPath)); ext {
		case ".srt":
			if len(req.Segments) == 0 {
				return Job{}, fmt.Errorf("export: no segments to encode")
			}
		case ".ass", ".ssa":
			if len(req.Events) == 0 {
				return Job{}, fmt.Errorf("export: no styled events to encode")
			}
		}
	}

	job := Job{
		ID:         uuid.New(),
		Kind:       req.Kind,
		Source:     req.Source,
		OutputPath: req.OutputPath,
		CreatedAt:  time.Now(),
	}

	jobCtx, cancel := context.WithCancel(ctx)
	js := &jobState{
		job:        job,
		cancel:     cancel,
		done:       make(chan struct{}),
		onProgress: onProgress,
	}

	p.mu.Lock()
	prev := p.active
	p.active = js
	p.mu.Unlock()

	// last request wins; the superseded job reports Cancelled
	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	p.log.Infow("export job submitted",
		"job", job.ID.String(),
		"kind", job.Kind.String(),
		"output", job.OutputPath,
	)

	go p.run(jobCtx, js, req)
	return job, nil
}

// Cancel stops the active job, if any.
func (p *Pipeline) Cancel() bool {
	p.mu.Lock()
	js := p.active
	p.mu.Unlock()
	if js == nil {
		return false
	}
	js.cancel()
	return true
}

// Active returns the currently running job.
func (p *Pipeline) Active() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return Job{}, false
	}
	return p.active.job, true
}

// Wait blocks until the given job has reported its terminal state.
func (p *Pipeline) Wait(job Job) {
	p.mu.Lock()
	js := p.active
	p.mu.Unlock()
	if js == nil || js.job.ID != job.ID {
		return
	}
	<-js.done
}

func (p *Pipeline) run(ctx context.Context, js *jobState, req Request) {
	defer js.cancel()
	defer p.clear(js)

	switch req.Kind {
	case KindSubtitleFile:
		p.runSubtitleFile(ctx, js, req)
	case KindBurnIn:
		p.runBurnIn(ctx, js, req)
	default:
		js.terminal(StateFailed, "unknown export kind", fmt.Errorf("unknown kind %d", req.Kind))
	}
}

func (p *Pipeline) clear(js *jobState) {
	p.mu.Lock()
	if p.active == js {
		p.active = nil
	}
	p.mu.Unlock()
}

func (p *Pipeline) runSubtitleFile(ctx context.Context, js *jobState, req Request) {
	js.report(StatePreparing, 0, "encoding subtitles")

	var content string
	var err error
	switch ext := strings.ToLower(filepath.Ext(req.OutputPath)); ext {
	case ".srt":
		content, err = codec.EncodeSRT(req.Segments)
	case ".ass", ".ssa":
		content, err = codec.EncodeASS(req.Events, codec.ASSOptions{Title: req.Title})
	default:
		err = fmt.Errorf("unsupported subtitle format %q", ext)
	}
	if err != nil {
		js.terminal(StateFailed, "encoding failed", err)
		return
	}
	if ctx.Err() != nil {
		js.terminal(StateCancelled, "cancelled", context.Canceled)
		return
	}

	js.report(StateRendering, 50, "writing subtitle file")
	if err := os.WriteFile(req.OutputPath, []byte(content), 0644); err != nil {
		js.terminal(StateFailed, "write failed", fmt.Errorf("%w: %w", ErrIOFailure, err))
		return
	}

	js.report(StateFinalizing, 90, "verifying output")
	if err := p.awaitOutput(ctx, req.OutputPath); err != nil {
		p.removeOutput(req.OutputPath)
		if ctx.Err() != nil {
			js.terminal(StateCancelled, "cancelled", context.Canceled)
			return
		}
		js.terminal(StateFailed, "output verification failed", fmt.Errorf("%w: %w", ErrIOFailure, err))
		return
	}

	js.terminal(StateSucceeded, "export complete", nil)
}

func (p *Pipeline) runBurnIn(ctx context.Context, js *jobState, req Request) {
	js.report(StatePreparing, 0, "probing source video")

	info, err := p.probe(ctx, req.Source)
	if err != nil {
		js.terminal(StateFailed, "probe failed", fmt.Errorf("%w: %w", ErrProcessFailure, err))
		return
	}

	width, height := 0, 0
	playW, playH := info.Width, info.Height
	if req.Preview {
		width, height = info.PreviewDimensions()
		playW, playH = width, height
	}

	subPath, err := p.writeSubtitleScript(req, playW, playH)
	if err != nil {
		js.terminal(StateFailed, "subtitle rendering failed", fmt.Errorf("%w: %w", ErrIOFailure, err))
		return
	}
	defer func() {
		_ = os.Remove(subPath)
	}()

	if ctx.Err() != nil {
		js.terminal(StateCancelled, "cancelled", context.Canceled)
		return
	}
	js.report(StatePreparing, 5, "subtitles prepared")

	handle, err := p.runner.Start(ctx, Spec{
		InputPath:    req.Source,
		SubtitlePath: subPath,
		OutputPath:   req.OutputPath,
		Duration:     info.Duration,
		Width:        width,
		Height:       height,
		Encoder:      req.Encoder,
	})
	if err != nil {
		js.terminal(StateFailed, "render start failed", fmt.Errorf("%w: %w", ErrProcessFailure, err))
		return
	}

	for update := range handle.Progress() {
		// render progress occupies the 5..95 band
		js.report(StateRendering, 5+update.Percent*0.9, update.Message)
	}

	if err := handle.Wait(); err != nil {
		p.removeOutput(req.OutputPath)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			js.terminal(StateCancelled, "cancelled", context.Canceled)
			return
		}
		js.terminal(StateFailed, "render failed", fmt.Errorf("%w: %w", ErrProcessFailure, err))
		return
	}
	if ctx.Err() != nil {
		p.removeOutput(req.OutputPath)
		js.terminal(StateCancelled, "cancelled", context.Canceled)
		return
	}

	js.report(StateFinalizing, 95, "verifying output")
	if err := p.awaitOutput(ctx, req.OutputPath); err != nil {
		p.removeOutput(req.OutputPath)
		if ctx.Err() != nil {
			js.terminal(StateCancelled, "cancelled", context.Canceled)
			return
		}
		js.terminal(StateFailed, "output verification failed", fmt.Errorf("%w: %w", ErrIOFailure, err))
		return
	}

	js.terminal(StateSucceeded, "export complete", nil)
}

func (p *Pipeline) writeSubtitleScript(req Request, width, height int) (string, error) {
	file, err := os.CreateTemp("", "autosub-*.ass")
	if err != nil {
		return "", fmt.Errorf("create subtitle temp file: %w", err)
	}
	path := file.Name()
	_ = file.Close()

	err = codec.WriteASS(req.Events, path, codec.ASSOptions{
		Title:    req.Title,
		PlayResX: width,
		PlayResY: height,
	})
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// awaitOutput polls for the output file with bounded retries; render
// processes occasionally flush a moment after exiting.
func (p *Pipeline) awaitOutput(ctx context.Context, path string) error {
	var lastErr error
	for i := 0; i < p.finalizeRetries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		info, err := os.Stat(path)
		if err == nil && info.Size() > 0 {
			return nil
		}
		lastErr = err
		time.Sleep(p.finalizeDelay)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("output file %s is empty", path)
	}
	return fmt.Errorf("output not available: %w", lastErr)
}

func (p *Pipeline) removeOutput(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.log.Infow("failed to remove partial output", "path", path, "error", err)
	}
}

// per-job progress bookkeeping
type jobState struct {
	job        Job
	cancel     context.CancelFunc
	done       chan struct{}
	onProgress func(Progress)

	mu          sync.Mutex
	lastPercent float64
	finished    bool
	terminalSet sync.Once
}

// report delivers a non-terminal update; percent is clamped so it never
// decreases
func (j *jobState) report(state State, percent float64, msg string) {
	j.mu.Lock()
	if j.finished {
		j.mu.Unlock()
		return
	}
	if percent < j.lastPercent {
		percent = j.lastPercent
	}
	j.lastPercent = percent
	j.mu.Unlock()

	j.deliver(Progress{JobID: j.job.ID, State: state, Percent: percent, Message: msg})
}

// terminal delivers the final state exactly once and releases waiters
func (j *jobState) terminal(state State, msg string, err error) {
	j.terminalSet.Do(func() {
		j.mu.Lock()
		j.finished = true
		percent := j.lastPercent
		if state == StateSucceeded {
			percent = 100
			j.lastPercent = 100
		}
		j.mu.Unlock()

		j.deliver(Progress{JobID: j.job.ID, State: state, Percent: percent, Message: msg, Err: err})
		close(j.done)
	})
}

func (j *jobState) deliver(p Progress) {
	if j.onProgress != nil {
		j.onProgress(p)
	}
}
