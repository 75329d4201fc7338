package live

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"elevateu/hr-coach/internal/config"
	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/services"
)

// Replies used when the model cannot answer.
const (
	ModelNotConfiguredReply    = "I'm sorry, the AI model is not configured correctly on the server."
	TechnicalIssueReply        = "I seem to be having a technical issue. Could you please repeat your last answer?"
	AnalysisNotConfiguredReply = "Server error: AI analysis model not configured."
)

// Resume upload status messages.
const (
	msgNoFileContent    = "No file content received."
	msgProcessingPDF    = "Processing PDF..."
	msgProcessingDOCX   = "Processing DOCX..."
	msgLegacyDoc        = "DOC files are not directly supported for text extraction. Please upload PDF or DOCX."
	msgUnsupportedType  = "Unsupported file type: %s. Please upload PDF or DOCX."
	msgNoResumeText     = "Could not extract text from resume. File might be empty or corrupted."
	msgResumeStored     = "Resume uploaded and processed successfully!"
	msgResumeTooLarge   = "File is too large. Please upload a resume under %s."
	msgResumeServerFail = "Server error processing resume: %v"
)

var ErrUnknownSession = errors.New("unknown live session")

// Manager runs the live interview protocol for every connected client.
type Manager struct {
	store       *Store
	coach       services.InterviewCoach
	transcriber services.Transcriber
	resumes     services.ResumeExtractor
	cfg         config.LiveConfig

	pick func(n int) int
	wg   sync.WaitGroup
}

// NewManager wires the live protocol. coach and transcriber may be nil when
// no model is configured; the client then receives explanatory replies.
func NewManager(
	store *Store,
	coach services.InterviewCoach,
	transcriber services.Transcriber,
	resumes services.ResumeExtractor,
	cfg config.LiveConfig,
) *Manager {
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 60 * time.Second
	}
	return &Manager{
		store:       store,
		coach:       coach,
		transcriber: transcriber,
		resumes:     resumes,
		cfg:         cfg,
	}
}

// Connect registers a new connection with empty state.
func (m *Manager) Connect(id string, emit Emitter) *Session {
	log.Printf("🔌 Live client connected: %s", id)
	return m.store.Open(context.Background(), id, emit)
}

// Disconnect cancels in-flight work for the connection and forgets it.
func (m *Manager) Disconnect(id string) {
	log.Printf("🔌 Live client disconnected: %s", id)
	m.store.Delete(id)
}

// Handle decodes one inbound frame and dispatches it.
func (m *Manager) Handle(id string, raw []byte) error {
	s, ok := m.store.Get(id)
	if !ok {
		return ErrUnknownSession
	}

	env, err := DecodeEnvelope(raw)
	if err != nil {
		s.Send(EventError, ErrorPayload{Message: "Invalid message format."})
		return nil
	}

	switch env.Event {
	case EventStartConversation:
		m.StartConversation(s)
	case EventUserTextInput:
		var p TextPayload
		if err := env.decodeData(&p); err != nil {
			s.Send(EventError, ErrorPayload{Message: err.Error()})
			return nil
		}
		m.UserText(s, p.Text)
	case EventUserAudioInput:
		var p AudioPayload
		if err := env.decodeData(&p); err != nil {
			s.Send(EventError, ErrorPayload{Message: err.Error()})
			return nil
		}
		m.UserAudio(s, p)
	case EventUploadResume:
		var p ResumePayload
		if err := env.decodeData(&p); err != nil {
			s.Send(EventError, ErrorPayload{Message: err.Error()})
			return nil
		}
		m.UploadResume(s, p)
	case EventEndConversation:
		m.EndConversation(s)
	case EventConversationMetrics:
		var metrics models.ConversationMetrics
		if err := env.decodeData(&metrics); err != nil {
			s.Send(EventError, ErrorPayload{Message: err.Error()})
			return nil
		}
		m.ConversationMetrics(s, metrics)
	default:
		s.Send(EventError, ErrorPayload{Message: fmt.Sprintf("Unknown event: %s", env.Event)})
	}
	return nil
}

// StartConversation resets the conversation and asks the opening question.
func (m *Manager) StartConversation(s *Session) {
	log.Printf("🎬 Starting conversation for live client %s", s.ID)
	question := OpeningQuestion(m.pick)
	s.Restart(question)
	s.Send(EventAIResponse, TextPayload{Text: question})
}

// UserText records a candidate answer and produces the coach's reply in the
// background. Input arriving while a reply is pending is dropped.
func (m *Manager) UserText(s *Session, text string) {
	message := strings.TrimSpace(text)
	if message == "" || s.Context().Err() != nil {
		return
	}

	ticket, ok := s.BeginReply(message)
	if !ok {
		log.Printf("⏳ AI already processing for live client %s, ignoring input", s.ID)
		return
	}
	m.startReply(s, message, ticket)
}

func (m *Manager) startReply(s *Session, message string, ticket replyTicket) {
	s.Send(EventAIThinking, nil)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		reply := m.reply(ticket.ctx, ticket.resume, ticket.history, message)
		if !s.FinishReply(ticket.epoch, reply) {
			log.Printf("🗑️ Discarding stale reply for live client %s", s.ID)
			return
		}
		s.Send(EventAIResponse, TextPayload{Text: reply})
	}()
}

func (m *Manager) reply(ctx context.Context, resume string, history []models.Turn, message string) string {
	if canned, ok := CannedResponse(message); ok {
		return canned
	}
	if m.coach == nil {
		return ModelNotConfiguredReply
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.AITimeout)
	defer cancel()

	reply, err := m.coach.Reply(ctx, resume, history, message)
	if err != nil {
		log.Printf("❌ Coach reply failed: %v", err)
		return TechnicalIssueReply
	}
	return reply
}

// UserAudio transcribes a recorded answer, echoes the transcript to the
// client and then handles it as typed input.
func (m *Manager) UserAudio(s *Session, p AudioPayload) {
	if s.Context().Err() != nil {
		return
	}
	if m.transcriber == nil {
		s.Send(EventError, ErrorPayload{Message: "Speech transcription is not configured on the server."})
		return
	}

	audio, err := decodeBase64Content(p.AudioContent)
	if err != nil || len(audio) == 0 {
		s.Send(EventError, ErrorPayload{Message: "Could not read the recorded audio."})
		return
	}

	mimeType := p.MimeType
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	turnCtx, epoch, ok := s.BeginTranscription()
	if !ok {
		log.Printf("⏳ AI already processing for live client %s, ignoring audio", s.ID)
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(turnCtx, m.cfg.AITimeout)
		defer cancel()

		text, err := m.transcriber.TranscribeBytes(ctx, audio, mimeType)
		text = strings.TrimSpace(text)
		if err == nil && text == "" {
			err = errors.New("transcription is empty")
		}
		if err != nil {
			s.AbortTranscription(epoch)
			if turnCtx.Err() != nil {
				return
			}
			log.Printf("❌ Live transcription failed for %s: %v", s.ID, err)
			s.Send(EventError, ErrorPayload{Message: "Sorry, I couldn't understand the audio. Please try again."})
			return
		}

		ticket, ok := s.FinishTranscription(epoch, text)
		if !ok {
			log.Printf("🗑️ Discarding stale transcript for live client %s", s.ID)
			return
		}
		s.Send(EventUserTranscript, TextPayload{Text: text})
		m.startReply(s, text, ticket)
	}()
}

// UploadResume extracts text from an uploaded resume and attaches it to the
// session.
func (m *Manager) UploadResume(s *Session, p ResumePayload) {
	log.Printf("📄 Resume upload for live client %s: %s (%s)", s.ID, p.FileName, p.FileType)

	if strings.TrimSpace(p.FileContent) == "" {
		s.Send(EventResumeUploadStatus, StatusPayload{Message: msgNoFileContent, Type: StatusError})
		return
	}

	data, err := decodeBase64Content(p.FileContent)
	if err != nil {
		log.Printf("❌ Resume decode failed for %s: %v", s.ID, err)
		s.Send(EventResumeUploadStatus, StatusPayload{Message: fmt.Sprintf(msgResumeServerFail, err), Type: StatusError})
		return
	}
	if m.cfg.MaxResumeBytes > 0 && int64(len(data)) > m.cfg.MaxResumeBytes {
		s.Send(EventResumeUploadStatus, StatusPayload{
			Message: fmt.Sprintf(msgResumeTooLarge, formatBytes(m.cfg.MaxResumeBytes)),
			Type:    StatusError,
		})
		return
	}

	switch p.FileType {
	case services.MIMETypePDF:
		s.Send(EventResumeUploadStatus, StatusPayload{Message: msgProcessingPDF, Type: StatusLoading})
	case services.MIMETypeDOCX:
		s.Send(EventResumeUploadStatus, StatusPayload{Message: msgProcessingDOCX, Type: StatusLoading})
	case services.MIMETypeDOC:
		s.Send(EventResumeUploadStatus, StatusPayload{Message: msgLegacyDoc, Type: StatusError})
		return
	default:
		s.Send(EventResumeUploadStatus, StatusPayload{Message: fmt.Sprintf(msgUnsupportedType, p.FileType), Type: StatusError})
		return
	}

	text, err := m.resumes.Extract(p.FileType, data)
	if err != nil || text == "" {
		if err != nil {
			log.Printf("⚠️ Resume extraction failed for %s: %v", s.ID, err)
		}
		s.Send(EventResumeUploadStatus, StatusPayload{Message: msgNoResumeText, Type: StatusError})
		return
	}

	if m.cfg.MaxResumeChars > 0 {
		text = services.TruncateRunes(text, m.cfg.MaxResumeChars, "...")
	}
	s.SetResume(text)

	log.Printf("✅ Stored resume text for live client %s", s.ID)
	s.Send(EventResumeUploadStatus, StatusPayload{Message: msgResumeStored, Type: StatusSuccess})
}

// EndConversation is acknowledged only; the history stays available for the
// metrics analysis that follows.
func (m *Manager) EndConversation(s *Session) {
	log.Printf("🏁 Conversation ended for live client %s", s.ID)
}

// ConversationMetrics analyses the finished interview in the background and
// sends the review to the client.
func (m *Manager) ConversationMetrics(s *Session, metrics models.ConversationMetrics) {
	log.Printf("📊 Received conversation metrics for live client %s", s.ID)
	if s.Context().Err() != nil {
		return
	}
	history, resume := s.Snapshot()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		analysis := m.analyze(s.Context(), metrics, history, resume)
		if s.Context().Err() != nil {
			return
		}
		s.Send(EventMetricsAnalysis, AnalysisPayload{Analysis: analysis})
	}()
}

func (m *Manager) analyze(ctx context.Context, metrics models.ConversationMetrics, history []models.Turn, resume string) string {
	if m.coach == nil {
		return AnalysisNotConfiguredReply
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.AITimeout)
	defer cancel()

	analysis, err := m.coach.Analyze(ctx, metrics, history, resume)
	if err != nil {
		log.Printf("❌ Conversation analysis failed: %v", err)
		return fmt.Sprintf("Sorry, an error occurred during analysis: %v. Please try again.", err)
	}
	return analysis
}

// Sessions reports the number of connected clients.
func (m *Manager) Sessions() int {
	return m.store.Count()
}

// Shutdown closes every session and waits for background work to finish or
// for ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	closed := m.store.CloseAll()
	log.Printf("🛑 Closed %d live session(s)", closed)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// decodeBase64Content accepts either a data URL or bare base64.
func decodeBase64Content(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "data:") {
		idx := strings.Index(content, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		content = content[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 content: %w", err)
	}
	return data, nil
}

func formatBytes(n int64) string {
	const mib = 1024 * 1024
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	if n >= 1024 {
		return fmt.Sprintf("%d KB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}
