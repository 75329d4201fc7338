package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"elevateu/hr-coach/internal/live"
	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/services"
)

// tracker accumulates the metrics the server analyses at the end of a
// session.
type tracker struct {
	mu            sync.Mutex
	started       time.Time
	lastAI        time.Time
	lastUser      time.Time
	metrics       models.ConversationMetrics
	awaitingReply bool
}

func (t *tracker) aiSaid(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.metrics.AITurns++
	t.metrics.AIWordCount += services.WordCount(text)
	if t.awaitingReply {
		t.metrics.AIResponseLatenciesMs = append(t.metrics.AIResponseLatenciesMs, float64(now.Sub(t.lastUser).Milliseconds()))
		t.awaitingReply = false
	}
	t.lastAI = now
}

func (t *tracker) userSaid(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.metrics.UserTurns++
	t.metrics.UserWordCount += services.WordCount(text)
	if !t.lastAI.IsZero() {
		t.metrics.UserResponseLatenciesMs = append(t.metrics.UserResponseLatenciesMs, float64(now.Sub(t.lastAI).Milliseconds()))
	}
	t.lastUser = now
	t.awaitingReply = true
}

func (t *tracker) snapshot() models.ConversationMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.metrics
	m.TotalDurationMs = float64(time.Since(t.started).Milliseconds())
	return m
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(event string, payload interface{}) error {
	frame, err := live.EncodeEnvelope(event, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *client) uploadResume(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	fileType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		fileType = services.MIMETypePDF
	case ".docx":
		fileType = services.MIMETypeDOCX
	case ".doc":
		fileType = services.MIMETypeDOC
	}

	return c.send(live.EventUploadResume, live.ResumePayload{
		FileName:    filepath.Base(path),
		FileType:    fileType,
		FileContent: "data:" + fileType + ";base64," + base64.StdEncoding.EncodeToString(data),
	})
}

func main() {
	url := flag.String("url", "ws://localhost:5000/live/ws", "live interview websocket URL")
	resume := flag.String("resume", "", "optional PDF or DOCX resume to upload before starting")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect to %s: %v", *url, err)
	}
	defer conn.Close()

	c := &client{conn: conn}
	stats := &tracker{started: time.Now()}
	analysis := make(chan string, 1)

	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("❌ Connection lost: %v", err)
				}
				close(analysis)
				return
			}

			env, err := live.DecodeEnvelope(raw)
			if err != nil {
				log.Printf("⚠️ %v", err)
				continue
			}

			switch env.Event {
			case live.EventAIResponse:
				var p live.TextPayload
				_ = json.Unmarshal(env.Data, &p)
				stats.aiSaid(p.Text)
				fmt.Printf("\nEva: %s\n> ", p.Text)
			case live.EventAIThinking:
				fmt.Print("(Eva is thinking...)")
			case live.EventUserTranscript:
				var p live.TextPayload
				_ = json.Unmarshal(env.Data, &p)
				fmt.Printf("\nYou said: %s\n", p.Text)
			case live.EventResumeUploadStatus:
				var p live.StatusPayload
				_ = json.Unmarshal(env.Data, &p)
				fmt.Printf("\n[resume %s] %s\n> ", p.Type, p.Message)
			case live.EventMetricsAnalysis:
				var p live.AnalysisPayload
				_ = json.Unmarshal(env.Data, &p)
				analysis <- p.Analysis
			case live.EventError:
				var p live.ErrorPayload
				_ = json.Unmarshal(env.Data, &p)
				fmt.Printf("\n[error] %s\n> ", p.Message)
			}
		}
	}()

	if *resume != "" {
		if err := c.uploadResume(*resume); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	fmt.Println("Type your answers. Commands: /resume <file>, /restart, /end")
	if err := c.send(live.EventStartConversation, nil); err != nil {
		log.Fatalf("❌ Failed to start conversation: %v", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			fmt.Print("> ")
			continue
		case line == "/end":
			finish(c, stats, analysis)
			return
		case line == "/restart":
			err = c.send(live.EventStartConversation, nil)
		case strings.HasPrefix(line, "/resume "):
			err = c.uploadResume(strings.TrimSpace(strings.TrimPrefix(line, "/resume ")))
		default:
			stats.userSaid(line)
			err = c.send(live.EventUserTextInput, live.TextPayload{Text: line})
		}
		if err != nil {
			log.Printf("❌ %v", err)
		}
	}
	finish(c, stats, analysis)
}

func finish(c *client, stats *tracker, analysis <-chan string) {
	if err := c.send(live.EventEndConversation, nil); err != nil {
		log.Printf("❌ %v", err)
		return
	}
	if err := c.send(live.EventConversationMetrics, stats.snapshot()); err != nil {
		log.Printf("❌ %v", err)
		return
	}

	fmt.Println("\nWaiting for the interview review...")
	select {
	case text, ok := <-analysis:
		if ok {
			fmt.Println("\n" + text)
		}
	case <-time.After(2 * time.Minute):
		log.Println("⚠️ Timed out waiting for the review")
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
