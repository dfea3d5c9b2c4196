package reconcile

import (
	"time"

	"go.uber.org/zap"
)

// AnomalyKind classifies a recoverable inconsistency.
type AnomalyKind string

const (
	// MalformedRecord: a field was missing or wrong-typed and got a default.
	MalformedRecord AnomalyKind = "malformed_record"
	// NoMatchingAnnotation: a Modified or Removed event had no local counterpart.
	NoMatchingAnnotation AnomalyKind = "no_matching_annotation"
	// ListenerFailure: the subscription to the remote collection reported an error.
	ListenerFailure AnomalyKind = "listener_failure"
	// ApplyFailure: applying an event panicked; the stream continued.
	ApplyFailure AnomalyKind = "apply_failure"
)

// Anomaly is an observability signal. None of them halt the event stream.
type Anomaly struct {
	Kind AnomalyKind
	// Event is the offending event, nil for listener failures.
	Event *Event
	// Fields lists the problem fields of a malformed record.
	Fields []string
	Err    error
	At     time.Time
}

// Sink receives anomalies.
// Report is called from the reconciler or listener goroutine and should not block for long.
type Sink interface {
	Report(a Anomaly)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(a Anomaly)

func (f SinkFunc) Report(a Anomaly) { f(a) }

// MultiSink fans an anomaly out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Report(a Anomaly) {
	for _, s := range m {
		if s != nil {
			s.Report(a)
		}
	}
}

// LogSink writes anomalies to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

// NewLogSink creates a sink logging to l.
func NewLogSink(l *zap.Logger) *LogSink {
	return &LogSink{Logger: l}
}

func (s *LogSink) Report(a Anomaly) {
	fields := []zap.Field{zap.String("anomaly", string(a.Kind))}
	if a.Event != nil {
		fields = append(fields,
			zap.String("event", a.Event.Kind.String()),
			zap.String("document_id", a.Event.Record.ID),
			zap.Float64("latitude", a.Event.Record.Coordinate.Latitude),
			zap.Float64("longitude", a.Event.Record.Coordinate.Longitude),
		)
	}
	if len(a.Fields) > 0 {
		fields = append(fields, zap.Strings("fields", a.Fields))
	}
	if a.Err != nil {
		fields = append(fields, zap.Error(a.Err))
	}

	switch a.Kind {
	case ListenerFailure, ApplyFailure:
		s.Logger.Error("Map sync failure", fields...)
	default:
		s.Logger.Warn("Map may be stale", fields...)
	}
}

// Observer is notified after every committed mutation, before the next event is applied.
type Observer interface {
	Observe(m Mutation)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(m Mutation)

func (f ObserverFunc) Observe(m Mutation) { f(m) }
