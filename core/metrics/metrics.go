// Package metrics defines the observability contract for the estimator.
// Implementations live under infra/metrics.
package metrics

import (
	"time"

	"github.com/lbarthe/socwatch/core/model"
)

// EvaluationEvent captures one model evaluation for observability purposes.
type EvaluationEvent struct {
	Snapshot model.Snapshot
	Estimate model.Estimate
	// Source identifies what triggered the evaluation ("field:soc",
	// "soc-step", "settings-load", ...).
	Source string
	Time   time.Time
}

// Sink records evaluation events.
type Sink interface {
	RecordEvaluation(ev EvaluationEvent) error
}

// NopSink discards every event.
type NopSink struct{}

// RecordEvaluation implements Sink.
func (NopSink) RecordEvaluation(EvaluationEvent) error { return nil }

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink builds a MultiSink from the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordEvaluation forwards the event to every sink.
func (m *MultiSink) RecordEvaluation(ev EvaluationEvent) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.RecordEvaluation(ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
