package telemetry

import (
	"log/slog"
	"time"

	"github.com/svcmock/restdispatch/pkg/domain"
)

// Event is one invocation-accounting record, published after a request
// has been dispatched to a response (spec §4.8).
type Event struct {
	ServiceID   string
	ServiceName string
	Version     string
	Response    domain.Response
	StartTime   time.Time
	ID          string
}

// Sink receives invocation events. Implementations must be safe for
// concurrent use; the pipeline publishes from every request's goroutine.
type Sink interface {
	Publish(Event)
}

// LogSink publishes invocation events as structured log lines. It is the
// default sink: invocation accounting is observable without any external
// dependency.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a LogSink writing through log.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Publish implements Sink.
func (s *LogSink) Publish(e Event) {
	s.log.Info("invocation",
		"service", e.ServiceName,
		"version", e.Version,
		"response", e.Response.Name,
		"status", e.Response.Status,
		"id", e.ID,
		"durationMs", time.Since(e.StartTime).Milliseconds(),
	)
}

var _ Sink = (*LogSink)(nil)

// ChannelSink fans events out over a buffered channel, for tests and for
// feeding an external metrics/analytics pipeline without coupling the
// engine to it. Publish never blocks: an event is dropped when the
// channel is full rather than stalling the request that produced it.
type ChannelSink struct {
	events chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

// Publish implements Sink.
func (s *ChannelSink) Publish(e Event) {
	select {
	case s.events <- e:
	default:
	}
}

// Events returns the channel events are published on.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

var _ Sink = (*ChannelSink)(nil)
