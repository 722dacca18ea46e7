package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lbarthe/socwatch/core/metrics"
	"github.com/lbarthe/socwatch/core/model"
	"github.com/lbarthe/socwatch/core/settings"
	"github.com/lbarthe/socwatch/internal/eventbus"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapStore() *mapStore { return &mapStore{data: map[string]string{}} }

func (s *mapStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", settings.ErrNotFound
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

type captureSink struct {
	mu     sync.Mutex
	events []metrics.EvaluationEvent
}

func (c *captureSink) RecordEvaluation(ev metrics.EvaluationEvent) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return nil
}

func TestStoreStartsFromDefaults(t *testing.T) {
	st := New(nil, nil, nil, nil)
	snap, est := st.Current()
	if snap != model.DefaultSnapshot() {
		t.Fatalf("expected defaults, got %+v", snap)
	}
	if est.Status != model.StatusIdle {
		t.Fatalf("expected Idle at startup, got %s", est.Status)
	}
}

func TestSetField(t *testing.T) {
	st := New(nil, nil, nil, nil)
	v, up, err := st.SetField(FieldSoC, "50")
	if err != nil {
		t.Fatalf("set soc: %v", err)
	}
	if v != 50 {
		t.Fatalf("expected 50 got %v", v)
	}
	if up.Snapshot.SoC != 50 || up.Estimate.GaugePercent != 50 {
		t.Fatalf("update not derived from new snapshot: %+v", up)
	}

	// garbage degrades to 0, out-of-range clamps
	if v, _, _ := st.SetField(FieldCharge, "abc"); v != 0 {
		t.Fatalf("garbage charge: expected 0 got %v", v)
	}
	if v, _, _ := st.SetField(FieldLoad, "99"); v != 10 {
		t.Fatalf("load clamp: expected 10 got %v", v)
	}

	if _, _, err := st.SetField("bogus", "1"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLastWriteWins(t *testing.T) {
	st := New(nil, nil, nil, nil)
	for _, txt := range []string{"10", "20", "30", "40"} {
		if _, _, err := st.SetField(FieldSoC, txt); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	snap, _ := st.Current()
	if snap.SoC != 40 {
		t.Fatalf("expected last write 40, got %v", snap.SoC)
	}
}

func TestStepSoCReentersSanitizer(t *testing.T) {
	st := New(nil, nil, nil, nil)
	if _, _, err := st.SetField(FieldSoC, "98"); err != nil {
		t.Fatalf("set: %v", err)
	}
	soc, up := st.StepSoC(5)
	if soc != 100 {
		t.Fatalf("expected clamp to 100, got %v", soc)
	}
	if up.Snapshot.SoC != 100 {
		t.Fatalf("snapshot not updated: %+v", up.Snapshot)
	}
	soc, _ = st.StepSoC(-5)
	if soc != 95 {
		t.Fatalf("expected 95, got %v", soc)
	}
}

func TestSettingsPersistedOnChange(t *testing.T) {
	persist := newMapStore()
	st := New(nil, persist, nil, nil)
	if _, _, err := st.SetField(FieldCapacity, "12.5"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := st.SetField(FieldReserve, "25"); err != nil {
		t.Fatalf("set: %v", err)
	}
	// session-only fields never hit the store
	if _, _, err := st.SetField(FieldSoC, "70"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if v, _ := persist.Get(context.Background(), settings.KeyCapacity); v != "12.5" {
		t.Fatalf("capacity not persisted, got %q", v)
	}
	if v, _ := persist.Get(context.Background(), settings.KeyReserve); v != "25" {
		t.Fatalf("reserve not persisted, got %q", v)
	}
	if _, err := persist.Get(context.Background(), "soc"); err == nil {
		t.Fatalf("soc must never be persisted")
	}
}

func TestApplySettings(t *testing.T) {
	persist := newMapStore()
	if err := persist.Set(context.Background(), settings.KeyCapacity, "20"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := persist.Set(context.Background(), settings.KeyReserve, "10"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	st := New(nil, persist, nil, nil)

	// defaults serve until the load is applied
	snap, _ := st.Current()
	if snap.CapacityKWh != model.DefaultCapacityKWh {
		t.Fatalf("expected default capacity before load")
	}

	up := st.ApplySettings(context.Background())
	if up.Source != "settings-load" {
		t.Fatalf("unexpected source %q", up.Source)
	}
	snap, _ = st.Current()
	if snap.CapacityKWh != 20 || snap.ReserveSoC != 10 {
		t.Fatalf("loaded settings not applied: %+v", snap)
	}
	// max was absent, default kept
	if snap.MaxSoC != model.DefaultMaxSoC {
		t.Fatalf("expected default max, got %v", snap.MaxSoC)
	}
}

func TestUpdatesPublishedAndRecorded(t *testing.T) {
	bus := eventbus.New[Update]()
	sink := &captureSink{}
	st := New(bus, nil, sink, nil)
	sub := bus.Subscribe()

	if _, _, err := st.SetField(FieldLoad, "5"); err != nil {
		t.Fatalf("set: %v", err)
	}
	select {
	case up := <-sub:
		if up.Source != "field:load" {
			t.Fatalf("unexpected source %q", up.Source)
		}
		if up.Estimate.Status != model.StatusDischarging {
			t.Fatalf("expected Discharging, got %s", up.Estimate.Status)
		}
	case <-time.After(time.Second):
		t.Fatalf("no update published")
	}

	sink.mu.Lock()
	n := len(sink.events)
	sink.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 recorded evaluation, got %d", n)
	}
}
