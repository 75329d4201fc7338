package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"elevateu/hr-coach/internal/config"
	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/services"
)

type recordedEvent struct {
	Event   string
	Payload interface{}
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
	ch     chan recordedEvent
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{ch: make(chan recordedEvent, 64)}
}

func (f *fakeEmitter) Emit(event string, payload interface{}) error {
	ev := recordedEvent{Event: event, Payload: payload}
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	f.ch <- ev
	return nil
}

func (f *fakeEmitter) next(t *testing.T) recordedEvent {
	t.Helper()
	select {
	case ev := <-f.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return recordedEvent{}
	}
}

func (f *fakeEmitter) snapshot() []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedEvent, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeEmitter) names() []string {
	var out []string
	for _, ev := range f.snapshot() {
		out = append(out, ev.Event)
	}
	return out
}

type replyCall struct {
	Resume  string
	History []models.Turn
	Message string
}

type fakeCoach struct {
	mu        sync.Mutex
	calls     []replyCall
	analyzed  [][]models.Turn
	replyFn   func(ctx context.Context, message string) (string, error)
	analyzeFn func(ctx context.Context, metrics models.ConversationMetrics) (string, error)
}

func (c *fakeCoach) Reply(ctx context.Context, resumeText string, history []models.Turn, message string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, replyCall{Resume: resumeText, History: history, Message: message})
	fn := c.replyFn
	c.mu.Unlock()
	if fn == nil {
		return "Tell me more about that.", nil
	}
	return fn(ctx, message)
}

func (c *fakeCoach) Analyze(ctx context.Context, metrics models.ConversationMetrics, history []models.Turn, resumeText string) (string, error) {
	c.mu.Lock()
	c.analyzed = append(c.analyzed, history)
	fn := c.analyzeFn
	c.mu.Unlock()
	if fn == nil {
		return "## Review\nSolid answers.", nil
	}
	return fn(ctx, metrics)
}

func (c *fakeCoach) replyCalls() []replyCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]replyCall, len(c.calls))
	copy(out, c.calls)
	return out
}

type fakeResumes struct {
	text string
	err  error
}

func (r *fakeResumes) Extract(fileType string, data []byte) (string, error) {
	return r.text, r.err
}

type fakeTranscriber struct {
	text string
	err  error
	gate chan struct{}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f.text, f.err
}

func (f *fakeTranscriber) TranscribeBytes(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func testLiveConfig() config.LiveConfig {
	return config.LiveConfig{
		MaxHistory:              12,
		MaxResumeChars:          8000,
		MaxAnalysisContextChars: 10000,
		MaxResumeBytes:          2 * 1024 * 1024,
		AITimeout:               time.Second,
	}
}

func newTestManager(coach *fakeCoach) *Manager {
	var c services.InterviewCoach
	if coach != nil {
		c = coach
	}
	m := NewManager(NewStore(12), c, &fakeTranscriber{text: "hello"}, &fakeResumes{}, testLiveConfig())
	m.pick = func(n int) int { return 0 }
	return m
}
