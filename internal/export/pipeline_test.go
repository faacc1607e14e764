package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tuguberk/ai-subtitle-creator/internal/segment"
	"github.com/Tuguberk/ai-subtitle-creator/internal/theme"
	"github.com/Tuguberk/ai-subtitle-creator/internal/video"
)

type fakeHandle struct {
	progress chan ProgressUpdate
	done     chan struct{}
	cancel   context.CancelFunc
	err      error
}

func (h *fakeHandle) Progress() <-chan ProgressUpdate { return h.progress }
func (h *fakeHandle) Wait() error                     { <-h.done; return h.err }
func (h *fakeHandle) Cancel()                         { h.cancel() }

// fakeRunner simulates a render. The first blockCalls starts write a
// partial output and then hang until their context is cancelled; later
// starts complete immediately.
type fakeRunner struct {
	mu         sync.Mutex
	calls      int
	blockCalls int
	fail       error
	started    chan struct{}
}

func (r *fakeRunner) Start(ctx context.Context, spec Spec) (Handle, error) {
	r.mu.Lock()
	r.calls++
	blocked := r.calls <= r.blockCalls
	r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	h := &fakeHandle{
		progress: make(chan ProgressUpdate, 8),
		done:     make(chan struct{}),
		cancel:   cancel,
	}

	go func() {
		defer close(h.done)
		defer close(h.progress)

		if blocked {
			_ = os.WriteFile(spec.OutputPath, []byte("partial"), 0644)
			if r.started != nil {
				select {
				case r.started <- struct{}{}:
				default:
				}
			}
			<-runCtx.Done()
			h.err = context.Canceled
			return
		}

		h.progress <- ProgressUpdate{Percent: 40, Message: "rendering"}
		h.progress <- ProgressUpdate{Percent: 100, Message: "render complete"}
		if r.fail != nil {
			h.err = r.fail
			return
		}
		_ = os.WriteFile(spec.OutputPath, []byte("rendered video"), 0644)
	}()

	return h, nil
}

type recorder struct {
	mu       sync.Mutex
	events   []Progress
	terminal chan Progress
}

func newRecorder() *recorder {
	return &recorder{terminal: make(chan Progress, 2)}
}

func (r *recorder) callback(p Progress) {
	r.mu.Lock()
	r.events = append(r.events, p)
	r.mu.Unlock()
	if p.State.Terminal() {
		r.terminal <- p
	}
}

func (r *recorder) all() []Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Progress, len(r.events))
	copy(out, r.events)
	return out
}

func waitTerminal(t *testing.T, r *recorder) Progress {
	t.Helper()
	select {
	case p := <-r.terminal:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for terminal state")
		return Progress{}
	}
}

func testPipeline(runner Runner) *Pipeline {
	p := NewPipeline(runner, nil)
	p.finalizeDelay = time.Millisecond
	p.probe = func(ctx context.Context, path string) (*video.Info, error) {
		return &video.Info{
			Path:     path,
			Duration: 10 * time.Second,
			Width:    1920,
			Height:   1080,
		}, nil
	}
	return p
}

func testEvents() []theme.StyledEvent {
	return theme.NewResolver(theme.Default()).Resolve([]segment.Segment{
		{ID: 1, Start: 0, End: 2 * time.Second, Text: "hello"},
	})
}

func TestSubtitleFileExport(t *testing.T) {
	p := testPipeline(&fakeRunner{})
	rec := newRecorder()
	out := filepath.Join(t.TempDir(), "out.srt")

	_, err := p.Submit(context.Background(), Request{
		Kind:       KindSubtitleFile,
		OutputPath: out,
		Segments: []segment.Segment{
			{ID: 1, Start: 0, End: time.Second, Text: "hello"},
		},
	}, rec.callback)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitTerminal(t, rec)
	if final.State != StateSucceeded {
		t.Fatalf("expected Succeeded, got %s (%v)", final.State, final.Err)
	}
	if final.Percent != 100 {
		t.Errorf("terminal percent = %v, want 100", final.Percent)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !strings.Contains(string(data), "00:00:00,000 --> 00:00:01,000") {
		t.Errorf("unexpected SRT content:\n%s", data)
	}
}

func TestBurnInExport(t *testing.T) {
	p := testPipeline(&fakeRunner{})
	rec := newRecorder()
	out := filepath.Join(t.TempDir(), "out.mp4")

	_, err := p.Submit(context.Background(), Request{
		Kind:       KindBurnIn,
		Source:     "input.mp4",
		OutputPath: out,
		Events:     testEvents(),
	}, rec.callback)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitTerminal(t, rec)
	if final.State != StateSucceeded {
		t.Fatalf("expected Succeeded, got %s (%v)", final.State, final.Err)
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}

	// progress never decreases and the terminal state arrives once
	events := rec.all()
	last := -1.0
	terminals := 0
	for _, ev := range events {
		if ev.Percent < last {
			t.Errorf("progress went backwards: %v after %v", ev.Percent, last)
		}
		last = ev.Percent
		if ev.State.Terminal() {
			terminals++
		}
	}
	if terminals != 1 {
		t.Errorf("expected exactly 1 terminal event, got %d", terminals)
	}
}

func TestBurnInFailureRemovesPartialOutput(t *testing.T) {
	renderErr := errors.New("encoder exploded")
	p := testPipeline(&fakeRunner{fail: renderErr})
	rec := newRecorder()
	out := filepath.Join(t.TempDir(), "out.mp4")

	// simulate a partial file left by the failed render
	if err := os.WriteFile(out, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := p.Submit(context.Background(), Request{
		Kind:       KindBurnIn,
		Source:     "input.mp4",
		OutputPath: out,
		Events:     testEvents(),
	}, rec.callback)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitTerminal(t, rec)
	if final.State != StateFailed {
		t.Fatalf("expected Failed, got %s", final.State)
	}
	if !errors.Is(final.Err, renderErr) {
		t.Errorf("terminal error = %v, want %v", final.Err, renderErr)
	}
	if !errors.Is(final.Err, ErrProcessFailure) {
		t.Errorf("terminal error = %v, want ErrProcessFailure classification", final.Err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("partial output not removed after failure")
	}
}

func TestSubtitleFileWriteFailureClassified(t *testing.T) {
	p := testPipeline(&fakeRunner{})
	rec := newRecorder()
	out := filepath.Join(t.TempDir(), "missing-dir", "out.srt")

	_, err := p.Submit(context.Background(), Request{
		Kind:       KindSubtitleFile,
		OutputPath: out,
		Segments: []segment.Segment{
			{ID: 1, Start: 0, End: time.Second, Text: "hello"},
		},
	}, rec.callback)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitTerminal(t, rec)
	if final.State != StateFailed {
		t.Fatalf("expected Failed, got %s", final.State)
	}
	if !errors.Is(final.Err, ErrIOFailure) {
		t.Errorf("terminal error = %v, want ErrIOFailure classification", final.Err)
	}
}

func TestSubtitleFileRejectsEmptyRequest(t *testing.T) {
	p := testPipeline(&fakeRunner{})
	dir := t.TempDir()

	_, err := p.Submit(context.Background(), Request{
		Kind:       KindSubtitleFile,
		OutputPath: filepath.Join(dir, "out.srt"),
	}, nil)
	if err == nil {
		t.Error("expected error for empty segment set")
	}

	_, err = p.Submit(context.Background(), Request{
		Kind:       KindSubtitleFile,
		OutputPath: filepath.Join(dir, "out.ass"),
	}, nil)
	if err == nil {
		t.Error("expected error for empty event set")
	}

	if _, err := os.Stat(filepath.Join(dir, "out.srt")); !os.IsNotExist(err) {
		t.Error("rejected request must not create an output file")
	}
}

func TestCancellationLeavesNoFile(t *testing.T) {
	runner := &fakeRunner{blockCalls: 1, started: make(chan struct{}, 1)}
	p := testPipeline(runner)
	rec := newRecorder()
	out := filepath.Join(t.TempDir(), "out.mp4")

	_, err := p.Submit(context.Background(), Request{
		Kind:       KindBurnIn,
		Source:     "input.mp4",
		OutputPath: out,
		Events:     testEvents(),
	}, rec.callback)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("render never started")
	}

	if !p.Cancel() {
		t.Fatal("Cancel reported no active job")
	}

	final := waitTerminal(t, rec)
	if final.State != StateCancelled {
		t.Fatalf("expected Cancelled, got %s", final.State)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("partial output not removed after cancellation")
	}
}

func TestSupersession(t *testing.T) {
	runner := &fakeRunner{blockCalls: 1, started: make(chan struct{}, 1)}
	p := testPipeline(runner)
	recA := newRecorder()
	recB := newRecorder()
	dir := t.TempDir()

	jobA, err := p.Submit(context.Background(), Request{
		Kind:       KindBurnIn,
		Source:     "input.mp4",
		OutputPath: filepath.Join(dir, "a.mp4"),
		Events:     testEvents(),
	}, recA.callback)
	if err != nil {
		t.Fatalf("Submit A failed: %v", err)
	}

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first render never started")
	}

	jobB, err := p.Submit(context.Background(), Request{
		Kind:       KindBurnIn,
		Source:     "input.mp4",
		OutputPath: filepath.Join(dir, "b.mp4"),
		Events:     testEvents(),
	}, recB.callback)
	if err != nil {
		t.Fatalf("Submit B failed: %v", err)
	}
	if jobA.ID == jobB.ID {
		t.Fatal("jobs share an id")
	}

	finalA := waitTerminal(t, recA)
	if finalA.State != StateCancelled {
		t.Errorf("superseded job state = %s, want Cancelled", finalA.State)
	}

	finalB := waitTerminal(t, recB)
	if finalB.State != StateSucceeded {
		t.Errorf("new job state = %s (%v), want Succeeded", finalB.State, finalB.Err)
	}
}

func TestCancelWithoutActiveJob(t *testing.T) {
	p := testPipeline(&fakeRunner{})
	if p.Cancel() {
		t.Error("Cancel reported an active job on an idle pipeline")
	}
}
