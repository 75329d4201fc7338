package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

var ErrWriterClosed = errors.New("live writer closed")

// FrameConn is the subset of a websocket connection the writer needs.
type FrameConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// ConnWriter is the only goroutine that writes to a live connection. It
// implements Emitter so that background replies can be queued from any
// goroutine.
type ConnWriter struct {
	ws           FrameConn
	frames       chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	pingInterval time.Duration
}

func NewConnWriter(ws FrameConn, buffer int) *ConnWriter {
	if buffer < 1 {
		buffer = 32
	}
	return &ConnWriter{
		ws:           ws,
		frames:       make(chan []byte, buffer),
		done:         make(chan struct{}),
		writeTimeout: 10 * time.Second,
		pingInterval: 25 * time.Second,
	}
}

// Emit implements Emitter.
func (w *ConnWriter) Emit(event string, payload interface{}) error {
	frame, err := EncodeEnvelope(event, payload)
	if err != nil {
		return err
	}

	select {
	case <-w.done:
		return ErrWriterClosed
	default:
	}

	select {
	case w.frames <- frame:
		return nil
	case <-w.done:
		return ErrWriterClosed
	}
}

// Run writes queued frames and keepalive pings until ctx is cancelled, the
// writer is closed or a write fails. On cancellation the connection is
// closed with a normal closure frame.
func (w *ConnWriter) Run(ctx context.Context) error {
	defer w.Close()

	ticker := time.NewTicker(w.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(w.writeTimeout)
			_ = w.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = w.ws.Close()
			return nil
		case <-w.done:
			return nil
		case <-ticker.C:
			if err := w.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(w.writeTimeout)); err != nil {
				return err
			}
		case frame := <-w.frames:
			if err := w.ws.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
				return err
			}
			if err := w.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return err
			}
		}
	}
}

// Close stops the writer; queued frames are dropped.
func (w *ConnWriter) Close() {
	w.closeOnce.Do(func() { close(w.done) })
}
