// Package trace implements the event-emission collaborator: a fire-and-forget
// sink for traceability events emitted after a plan is finalized.
//
// Emission is strictly best-effort. A failing or slow sink must never change
// or delay a resolve response, so the async dispatcher drops events when its
// buffer is full and swallows (but logs) every downstream fault.
package trace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one emitted traceability record.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	EmittedAt time.Time      `json:"emitted_at"`
}

// Emitter is the sink contract. Implementations swallow their own failures.
type Emitter interface {
	Emit(eventType, status, message string, payload map[string]any)
}

// LogEmitter writes every event to a structured logger.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates a LogEmitter. A nil logger uses slog.Default.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger}
}

// Emit logs the event. Never fails.
func (l *LogEmitter) Emit(eventType, status, message string, payload map[string]any) {
	l.logger.Info("trace event",
		"event_id", uuid.NewString(),
		"event_type", eventType,
		"status", status,
		"message", message,
		"payload", payload,
	)
}

// AsyncDispatcher decouples emission from the caller: events are queued to a
// bounded buffer and delivered by a single background goroutine. A full
// buffer drops the event (logged at Warn) rather than blocking the request
// path. There is no retry.
type AsyncDispatcher struct {
	sink   Emitter
	logger *slog.Logger
	events chan Event

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

// DefaultBufferSize is the event buffer for an AsyncDispatcher.
const DefaultBufferSize = 64

// NewAsyncDispatcher starts a dispatcher delivering to sink.
// Call Close to stop the background goroutine; pending buffered events are
// delivered first.
func NewAsyncDispatcher(sink Emitter, logger *slog.Logger) *AsyncDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &AsyncDispatcher{
		sink:    sink,
		logger:  logger,
		events:  make(chan Event, DefaultBufferSize),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit queues the event. Non-blocking: a full buffer drops the event, and
// so does emitting against a closed dispatcher.
func (d *AsyncDispatcher) Emit(eventType, status, message string, payload map[string]any) {
	select {
	case <-d.closing:
		d.logger.Warn("trace dispatcher closed, event dropped", "event_type", eventType)
		return
	default:
	}

	ev := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Status:    status,
		Message:   message,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("trace buffer full, event dropped", "event_type", eventType)
	}
}

// Close stops the dispatcher after draining buffered events. Safe to call
// more than once; Emit calls arriving afterwards are dropped, not panics.
func (d *AsyncDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.closing)
		<-d.done
	})
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for {
		select {
		case ev := <-d.events:
			d.deliver(ev)
		case <-d.closing:
			for {
				select {
				case ev := <-d.events:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

// deliver hands one event to the sink, containing any panic.
func (d *AsyncDispatcher) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("trace sink panicked", "event_type", ev.Type, "panic", r)
		}
	}()
	d.sink.Emit(ev.Type, ev.Status, ev.Message, ev.Payload)
}
