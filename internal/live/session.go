package live

import (
	"context"
	"log"
	"sync"

	"elevateu/hr-coach/internal/models"
)

// Emitter delivers server events to one client. Implementations must be safe
// for concurrent use.
type Emitter interface {
	Emit(event string, payload interface{}) error
}

// Session is the in-memory state of one live connection.
type Session struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc
	emit   Emitter

	mu           sync.Mutex
	history      *History
	busy         bool
	transcribing bool
	epoch        uint64
	resume       string

	// turnCtx scopes AI work to the current epoch; Restart cancels it.
	turnCtx    context.Context
	turnCancel context.CancelFunc
}

// replyTicket is what a background reply needs, captured together with the
// busy claim.
type replyTicket struct {
	ctx     context.Context
	epoch   uint64
	history []models.Turn
	resume  string
}

func newSession(parent context.Context, id string, maxHistory int, emit Emitter) *Session {
	ctx, cancel := context.WithCancel(parent)
	turnCtx, turnCancel := context.WithCancel(ctx)
	return &Session{
		ID:         id,
		ctx:        ctx,
		cancel:     cancel,
		emit:       emit,
		history:    NewHistory(maxHistory),
		turnCtx:    turnCtx,
		turnCancel: turnCancel,
	}
}

// Context is cancelled when the connection goes away.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Restart clears the conversation, cancels any reply or transcription still
// in flight and seeds the history with the opening question. The resume
// survives a restart.
func (s *Session) Restart(opening string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turnCancel()
	s.turnCtx, s.turnCancel = context.WithCancel(s.ctx)
	s.history.Clear()
	s.busy = false
	s.transcribing = false
	s.epoch++
	if opening != "" {
		s.history.Append(models.SpeakerAI, opening)
	}
}

// BeginReply records the user's message and marks the session busy. The
// ticket holds the history as it was before the message. ok is false when a
// reply or transcription is already in flight.
func (s *Session) BeginReply(message string) (replyTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy || s.transcribing {
		return replyTicket{}, false
	}
	return s.beginReplyLocked(message), true
}

func (s *Session) beginReplyLocked(message string) replyTicket {
	ticket := replyTicket{
		ctx:     s.turnCtx,
		epoch:   s.epoch,
		history: s.history.Snapshot(),
		resume:  s.resume,
	}
	s.history.Append(models.SpeakerUser, message)
	s.busy = true
	return ticket
}

// BeginTranscription claims the session for a spoken answer. Text and audio
// input are ignored until FinishTranscription or AbortTranscription.
func (s *Session) BeginTranscription() (context.Context, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy || s.transcribing {
		return nil, 0, false
	}
	s.transcribing = true
	return s.turnCtx, s.epoch, true
}

// AbortTranscription releases the claim after a failed transcription.
func (s *Session) AbortTranscription(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch == s.epoch {
		s.transcribing = false
	}
}

// FinishTranscription turns the claim into a pending reply for message. ok is
// false when the conversation was restarted or closed in the meantime.
func (s *Session) FinishTranscription(epoch uint64, message string) (replyTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.ctx.Err() != nil {
		return replyTicket{}, false
	}
	s.transcribing = false
	return s.beginReplyLocked(message), true
}

// FinishReply appends the AI turn and clears the busy flag. A reply produced
// for an earlier epoch is dropped and reported as false.
func (s *Session) FinishReply(epoch uint64, reply string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.ctx.Err() != nil {
		return false
	}
	s.history.Append(models.SpeakerAI, reply)
	s.busy = false
	return true
}

// Busy reports whether a reply or transcription is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy || s.transcribing
}

func (s *Session) SetResume(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume = text
}

func (s *Session) Resume() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resume
}

// Snapshot copies the history and resume for use outside the lock.
func (s *Session) Snapshot() ([]models.Turn, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Snapshot(), s.resume
}

// Send emits an event, logging delivery failures. A closed session sends
// nothing.
func (s *Session) Send(event string, payload interface{}) {
	if s.ctx.Err() != nil || s.emit == nil {
		return
	}
	if err := s.emit.Emit(event, payload); err != nil {
		log.Printf("⚠️ Live session %s: failed to send %s: %v", s.ID, event, err)
	}
}

func (s *Session) close() {
	s.cancel()
}
