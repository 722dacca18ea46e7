package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/lbarthe/socwatch/core/model"
)

type recordingSink struct {
	n   int
	err error
}

func (s *recordingSink) RecordEvaluation(EvaluationEvent) error {
	s.n++
	return s.err
}

func TestMultiSink(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("sink down")}
	c := &recordingSink{}
	m := NewMultiSink(a, b, c)

	ev := EvaluationEvent{Snapshot: model.DefaultSnapshot(), Time: time.Now()}
	err := m.RecordEvaluation(ev)
	if err == nil || err.Error() != "sink down" {
		t.Fatalf("expected first error, got %v", err)
	}
	// every sink still sees the event
	if a.n != 1 || b.n != 1 || c.n != 1 {
		t.Fatalf("fan-out incomplete: %d %d %d", a.n, b.n, c.n)
	}
}

func TestNopSink(t *testing.T) {
	if err := (NopSink{}).RecordEvaluation(EvaluationEvent{}); err != nil {
		t.Fatalf("nop sink errored: %v", err)
	}
}
