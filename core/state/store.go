// Package state holds the current battery snapshot and re-evaluates the
// model on every change. The last applied edit wins; there is no merge
// logic between rapid successive edits.
package state

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lbarthe/socwatch/core/logger"
	"github.com/lbarthe/socwatch/core/metrics"
	"github.com/lbarthe/socwatch/core/model"
	"github.com/lbarthe/socwatch/core/sanitize"
	"github.com/lbarthe/socwatch/core/settings"
	"github.com/lbarthe/socwatch/internal/eventbus"
)

// Field names a single editable snapshot field.
type Field string

const (
	FieldCapacity Field = "capacity"
	FieldSoC      Field = "soc"
	FieldCharge   Field = "charge"
	FieldLoad     Field = "load"
	FieldReserve  Field = "reserve"
	FieldMax      Field = "max"
)

// Update is published on the bus after every snapshot change.
type Update struct {
	Snapshot model.Snapshot
	Estimate model.Estimate
	Source   string
	Time     time.Time
}

// Store owns the current snapshot. Edits go through the sanitizer, the model
// is re-evaluated synchronously, and the persisted trio is saved in the
// background so storage never gates an evaluation.
type Store struct {
	mu   sync.RWMutex
	snap model.Snapshot

	bus     *eventbus.Bus[Update]
	persist settings.Store
	sink    metrics.Sink
	log     logger.Logger

	saves sync.WaitGroup
}

// New creates a Store seeded with the session defaults, so a correct
// estimate is available before any persisted settings arrive. bus, persist,
// sink and log may all be nil.
func New(bus *eventbus.Bus[Update], persist settings.Store, sink metrics.Sink, log logger.Logger) *Store {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Store{
		snap:    model.DefaultSnapshot(),
		bus:     bus,
		persist: persist,
		sink:    sink,
		log:     log,
	}
}

// Current returns the snapshot and its freshly evaluated estimate.
func (s *Store) Current() (model.Snapshot, model.Estimate) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	return snap, model.Evaluate(snap)
}

// SetField sanitizes text into the named field and applies it. It returns
// the sanitized value and the resulting update. The only possible error is
// an unknown field name; malformed text degrades to 0 by design.
func (s *Store) SetField(field Field, text string) (float64, Update, error) {
	s.mu.Lock()
	snap := s.snap
	var v float64
	switch field {
	case FieldCapacity:
		v = sanitize.Capacity(text)
		snap.CapacityKWh = v
	case FieldSoC:
		v = sanitize.Percent(text)
		snap.SoC = v
	case FieldCharge:
		v = sanitize.Power(text)
		snap.ChargePowerKW = v
	case FieldLoad:
		v = sanitize.Power(text)
		snap.LoadPowerKW = v
	case FieldReserve:
		v = sanitize.Percent(text)
		snap.ReserveSoC = v
	case FieldMax:
		v = sanitize.Percent(text)
		snap.MaxSoC = v
	default:
		s.mu.Unlock()
		return 0, Update{}, fmt.Errorf("unknown field %q", field)
	}
	s.snap = snap
	s.mu.Unlock()

	up := s.publish(snap, "field:"+string(field))
	if field == FieldCapacity || field == FieldReserve || field == FieldMax {
		s.saveAsync(snap)
	}
	return v, up, nil
}

// StepSoC bumps the SoC by delta percentage points. The stepped value is
// clamped, rounded to a whole percent and re-enters the store through the
// sanitizer like any typed entry.
func (s *Store) StepSoC(delta float64) (float64, Update) {
	s.mu.RLock()
	cur := s.snap.SoC
	s.mu.RUnlock()
	soc := model.StepSoC(cur, delta)
	v, up, _ := s.SetField(FieldSoC, strconv.FormatFloat(soc, 'f', -1, 64))
	return v, up
}

// ApplySettings loads the persisted trio and folds it into the current
// snapshot. Call it once the settings store is ready; the in-memory defaults
// keep serving estimates until then.
func (s *Store) ApplySettings(ctx context.Context) Update {
	loaded := settings.Load(ctx, s.persist, s.log)
	s.mu.Lock()
	s.snap = loaded.Apply(s.snap)
	snap := s.snap
	s.mu.Unlock()
	return s.publish(snap, "settings-load")
}

// Close waits for in-flight background saves to finish.
func (s *Store) Close() error {
	s.saves.Wait()
	return nil
}

func (s *Store) publish(snap model.Snapshot, source string) Update {
	up := Update{
		Snapshot: snap,
		Estimate: model.Evaluate(snap),
		Source:   source,
		Time:     time.Now(),
	}
	if s.bus != nil {
		s.bus.Publish(up)
	}
	if err := s.sink.RecordEvaluation(metrics.EvaluationEvent{
		Snapshot: up.Snapshot,
		Estimate: up.Estimate,
		Source:   source,
		Time:     up.Time,
	}); err != nil && s.log != nil {
		s.log.Warnf("record evaluation: %v", err)
	}
	return up
}

// saveAsync persists the trio without blocking the caller. Failures leave
// the in-memory state untouched and are only logged.
func (s *Store) saveAsync(snap model.Snapshot) {
	if s.persist == nil {
		return
	}
	enc := settings.FromSnapshot(snap)
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := settings.Save(ctx, s.persist, enc); err != nil && s.log != nil {
			s.log.Warnf("save settings: %v", err)
		}
	}()
}
