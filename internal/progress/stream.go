// Package progress runs a long task on its own goroutine and relays its
// progress messages to a single consumer through a channel. Every stream ends
// with exactly one terminal event, error or complete, after which the channel
// is closed.
package progress

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxLifetime bounds how long a stream may stay open.
const DefaultMaxLifetime = time.Hour

// DefaultBuffer is the event channel capacity when Options.Buffer is zero.
const DefaultBuffer = 16

// DefaultPublishTimeout bounds one Sink.Publish call.
const DefaultPublishTimeout = 5 * time.Second

var (
	// ErrCompleted is returned by Report once the stream has ended.
	ErrCompleted = errors.New("progress: stream already completed")
	// ErrCanceled is the cause attached to the task context by Cancel.
	ErrCanceled = errors.New("progress: stream canceled")
	// ErrLifetimeExceeded is reported when a stream outlives Options.MaxLifetime.
	ErrLifetimeExceeded = errors.New("stream lifetime exceeded")
)

// EventType classifies stream events.
type EventType string

// Event types
const (
	EventProgress EventType = "progress"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// Event is one message delivered to the stream consumer.
type Event struct {
	StreamID string    `json:"streamId"`
	Seq      int       `json:"seq"`
	Type     EventType `json:"type"`
	Message  string    `json:"message,omitempty"`
	Data     any       `json:"data,omitempty"`
	At       time.Time `json:"at"`

	// Err is the task error of an error event.
	Err error `json:"-"`
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventError || e.Type == EventComplete
}

// Task is the work relayed by a stream. It reports progress through r and
// returns the payload of the complete event.
type Task func(ctx context.Context, r *Reporter) (any, error)

// Options configures a stream.
type Options struct {
	// ID names the stream. A random UUID is used when empty.
	ID string
	// MaxLifetime defaults to DefaultMaxLifetime.
	MaxLifetime time.Duration
	// Pace is the minimum delay between two progress events.
	Pace time.Duration
	// Buffer is the event channel capacity.
	Buffer int
	// Sink, when set, receives a copy of every delivered event in sequence
	// order. Publishing never holds up other reporters.
	Sink Sink
	// PublishTimeout defaults to DefaultPublishTimeout.
	PublishTimeout time.Duration
	Logger         *slog.Logger
}

// Stream is a running task and the channel of its events.
type Stream struct {
	id     string
	opts   Options
	events chan Event
	stop   chan struct{}
	done   chan struct{}
	cancel context.CancelCauseFunc
	logger *slog.Logger

	stopOnce sync.Once
	mu       sync.Mutex
	seq      int
	lastAt   time.Time
	finished bool

	// Events waiting for the sink, and whether a caller is publishing them.
	pending   []Event
	mirroring bool
	mirrored  *sync.Cond
}

// Start runs task on a new goroutine and returns its stream. Cancelling ctx
// or calling Cancel stops the task without a terminal event.
func Start(ctx context.Context, opts Options, task Task) *Stream {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.MaxLifetime <= 0 {
		opts.MaxLifetime = DefaultMaxLifetime
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base, cancel := context.WithCancelCause(ctx)
	taskCtx, stopTimer := context.WithTimeoutCause(base, opts.MaxLifetime, ErrLifetimeExceeded)

	s := &Stream{
		id:     opts.ID,
		opts:   opts,
		events: make(chan Event, opts.Buffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
		logger: logger.With("stream_id", opts.ID),
	}
	s.mirrored = sync.NewCond(&s.mu)

	go func() {
		defer stopTimer()
		s.run(taskCtx, task)
	}()
	return s
}

// ID returns the stream identifier.
func (s *Stream) ID() string {
	return s.id
}

// Events returns the channel of stream events. It is closed after the
// terminal event, or right away when the stream is cancelled.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Done is closed when the stream goroutine has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Cancel stops the task and drops any pending event. It is safe to call
// more than once and after the stream has ended.
func (s *Stream) Cancel() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.cancel(ErrCanceled)
	})
}

type outcome struct {
	value any
	err   error
}

func (s *Stream) run(ctx context.Context, task Task) {
	defer close(s.done)
	defer close(s.events)
	defer s.waitMirrored()

	start := time.Now()
	results := make(chan outcome, 1)
	go func() {
		v, err := task(ctx, &Reporter{stream: s, ctx: ctx})
		results <- outcome{value: v, err: err}
	}()

	var out outcome
	select {
	case out = <-results:
	case <-ctx.Done():
	}

	// A task that returns because its context ended is reported by cause.
	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		if errors.Is(cause, ErrLifetimeExceeded) {
			s.finish(Event{Type: EventError, Message: ErrLifetimeExceeded.Error(), Err: ErrLifetimeExceeded})
			s.logger.Warn("stream lifetime exceeded", "max_lifetime", s.opts.MaxLifetime)
			return
		}
		s.markFinished()
		s.logger.Info("stream canceled", "duration", time.Since(start), "cause", cause)
		return
	}

	if out.err != nil {
		s.finish(Event{Type: EventError, Message: out.err.Error(), Err: out.err})
		s.logger.Warn("stream task failed", "duration", time.Since(start), "error", out.err)
		return
	}
	s.finish(Event{Type: EventComplete, Data: out.value})
	s.logger.Info("stream completed", "duration", time.Since(start), "events", s.sequence())
}

// finish delivers the terminal event unless the stream was cancelled.
func (s *Stream) finish(e Event) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.deliver(e, nil)
	s.mu.Unlock()
	s.mirror()
}

func (s *Stream) markFinished() {
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
}

func (s *Stream) sequence() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// deliver stamps e, sends it and queues it for the sink. The caller holds
// s.mu and calls mirror after releasing it.
func (s *Stream) deliver(e Event, abort <-chan struct{}) error {
	select {
	case <-s.stop:
		return ErrCanceled
	default:
	}

	s.seq++
	e.StreamID = s.id
	e.Seq = s.seq
	e.At = time.Now()

	select {
	case s.events <- e:
	case <-s.stop:
		return ErrCanceled
	case <-abort:
		return ErrCanceled
	}
	s.lastAt = e.At

	if s.opts.Sink != nil {
		s.pending = append(s.pending, e)
	}
	return nil
}

// mirror publishes the queued events without holding s.mu. When another
// caller is already publishing, it picks up the new events instead.
func (s *Stream) mirror() {
	if s.opts.Sink == nil {
		return
	}
	s.mu.Lock()
	if s.mirroring {
		s.mu.Unlock()
		return
	}
	s.mirroring = true
	for len(s.pending) > 0 {
		e := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		s.publish(e)
		s.mu.Lock()
	}
	s.mirroring = false
	s.mirrored.Broadcast()
	s.mu.Unlock()
}

func (s *Stream) publish(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.PublishTimeout)
	defer cancel()
	if err := s.opts.Sink.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to mirror stream event", "seq", e.Seq, "error", err)
	}
}

// waitMirrored blocks until every queued event has reached the sink.
func (s *Stream) waitMirrored() {
	s.mu.Lock()
	for s.mirroring {
		s.mirrored.Wait()
	}
	s.mu.Unlock()
	s.mirror()
}

// Reporter is handed to a Task to publish progress messages.
type Reporter struct {
	stream *Stream
	ctx    context.Context
}

// Report publishes a progress message.
func (r *Reporter) Report(message string) error {
	return r.ReportData(message, nil)
}

// ReportData publishes a progress message carrying a payload.
func (r *Reporter) ReportData(message string, data any) error {
	err := r.report(message, data)
	r.stream.mirror()
	return err
}

func (r *Reporter) report(message string, data any) error {
	s := r.stream
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrCompleted
	}
	if err := r.ctx.Err(); err != nil {
		return context.Cause(r.ctx)
	}

	if s.opts.Pace > 0 && !s.lastAt.IsZero() {
		if wait := s.opts.Pace - time.Since(s.lastAt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-r.ctx.Done():
				timer.Stop()
				return context.Cause(r.ctx)
			}
		}
	}

	if err := s.deliver(Event{Type: EventProgress, Message: message, Data: data}, r.ctx.Done()); err != nil {
		if r.ctx.Err() != nil {
			return context.Cause(r.ctx)
		}
		return err
	}
	return nil
}
