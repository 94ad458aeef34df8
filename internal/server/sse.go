package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/server/middleware"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment sends an SSE comment line, ignored by clients; used as a keep-alive.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// streamTask runs task as a progress stream and relays its events as SSE
// frames until the terminal event. A client disconnect cancels the task.
func (s *Server) streamTask(w http.ResponseWriter, r *http.Request, task progress.Task) {
	requestID := middleware.RequestIDFromContext(r.Context())

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	stream := progress.Start(r.Context(), progress.Options{
		ID:          requestID,
		MaxLifetime: s.stream.MaxLifetime,
		Pace:        s.stream.Pace,
		Buffer:      s.stream.Buffer,
		Sink:        s.sink,
		Logger:      s.logger,
	}, task)
	defer stream.Cancel()

	if err := sse.WriteComment("stream " + stream.ID()); err != nil {
		return
	}

	for event := range stream.Events() {
		if err := s.writeStreamEvent(sse, event, requestID); err != nil {
			s.logger.Warn("failed to write SSE event", "stream_id", stream.ID(), "seq", event.Seq, "error", err)
			return
		}
	}
}

// writeStreamEvent writes one stream event as an SSE frame.
func (s *Server) writeStreamEvent(sse *SSEWriter, event progress.Event, requestID string) error {
	if event.Type != progress.EventError {
		return sse.WriteEvent(string(event.Type), event)
	}

	body := ErrorBody{Kind: KindInternal, Message: event.Message, RequestID: requestID}
	if event.Err != nil {
		body = newErrorBody(event.Err, requestID)
	}
	return sse.WriteEvent(string(event.Type), map[string]any{
		"streamId": event.StreamID,
		"seq":      event.Seq,
		"error":    body,
	})
}
