package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbarthe/socwatch/core/model"
)

type mapStore struct {
	data map[string]string
	err  error
}

func (s *mapStore) Get(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

func TestLoadDefaults(t *testing.T) {
	s := Load(context.Background(), nil, nil)
	assert.Equal(t, Defaults(), s)

	// empty store falls back key by key
	s = Load(context.Background(), &mapStore{data: map[string]string{}}, nil)
	assert.Equal(t, "15.33", s.Capacity)
	assert.Equal(t, "20", s.Reserve)
	assert.Equal(t, "90", s.Max)
}

func TestLoadFailingStore(t *testing.T) {
	st := &mapStore{err: errors.New("storage unavailable")}
	s := Load(context.Background(), st, nil)
	assert.Equal(t, Defaults(), s)
}

func TestLoadPartial(t *testing.T) {
	st := &mapStore{data: map[string]string{KeyReserve: "25"}}
	s := Load(context.Background(), st, nil)
	assert.Equal(t, "15.33", s.Capacity)
	assert.Equal(t, "25", s.Reserve)
}

func TestApplyClampsLikeTypedInput(t *testing.T) {
	s := Settings{Capacity: "12.8", Reserve: "150", Max: "-5"}
	snap := s.Apply(model.DefaultSnapshot())
	assert.Equal(t, 12.8, snap.CapacityKWh)
	assert.Equal(t, 100.0, snap.ReserveSoC)
	assert.Equal(t, 0.0, snap.MaxSoC)

	// garbage degrades to zero, same as a typed entry
	s = Settings{Capacity: "???", Reserve: "x", Max: "y"}
	snap = s.Apply(model.DefaultSnapshot())
	assert.Equal(t, 0.0, snap.CapacityKWh)
	assert.Equal(t, 0.0, snap.ReserveSoC)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := &mapStore{data: map[string]string{}}

	snap := Settings{Capacity: "15.33", Reserve: "20", Max: "90"}.Apply(model.Snapshot{})
	require.NoError(t, Save(ctx, st, FromSnapshot(snap)))

	loaded := Load(ctx, st, nil)
	again := loaded.Apply(model.Snapshot{})
	assert.Equal(t, snap, again)
}
