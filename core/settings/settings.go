// Package settings defines which snapshot fields survive a restart and how
// they are encoded for the key-value store. Only capacity, reserve and max
// are persisted; soc and the two power fields are session-only.
package settings

import (
	"context"
	"errors"
	"strconv"

	"github.com/lbarthe/socwatch/core/logger"
	"github.com/lbarthe/socwatch/core/model"
	"github.com/lbarthe/socwatch/core/sanitize"
)

// Store keys and their string-encoded decimal defaults.
const (
	KeyCapacity = "capacity"
	KeyReserve  = "reserve"
	KeyMax      = "max"

	DefaultCapacity = "15.33"
	DefaultReserve  = "20"
	DefaultMax      = "90"
)

// ErrNotFound is returned by stores when a key has no persisted value.
var ErrNotFound = errors.New("settings: key not found")

// Store is a minimal key-value backend for the three persisted settings.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Settings carries the persisted trio in their string encoding.
type Settings struct {
	Capacity string `json:"capacity"`
	Reserve  string `json:"reserve"`
	Max      string `json:"max"`
}

// Defaults returns the values used when no store is available or a key is
// absent.
func Defaults() Settings {
	return Settings{Capacity: DefaultCapacity, Reserve: DefaultReserve, Max: DefaultMax}
}

// Load reads the persisted trio from the store. A missing or failing key
// falls back to its default; store failures are logged and swallowed so the
// model never sees them.
func Load(ctx context.Context, st Store, log logger.Logger) Settings {
	s := Defaults()
	if st == nil {
		return s
	}
	load := func(key, def string) string {
		v, err := st.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return def
		}
		if err != nil {
			if log != nil {
				log.Warnf("load setting %s: %v", key, err)
			}
			return def
		}
		return v
	}
	s.Capacity = load(KeyCapacity, DefaultCapacity)
	s.Reserve = load(KeyReserve, DefaultReserve)
	s.Max = load(KeyMax, DefaultMax)
	return s
}

// Save writes the trio to the store. The caller decides whether a failure is
// worth more than a log line.
func Save(ctx context.Context, st Store, s Settings) error {
	if st == nil {
		return nil
	}
	if err := st.Set(ctx, KeyCapacity, s.Capacity); err != nil {
		return err
	}
	if err := st.Set(ctx, KeyReserve, s.Reserve); err != nil {
		return err
	}
	return st.Set(ctx, KeyMax, s.Max)
}

// Apply folds the persisted values into snap through the same sanitizer path
// as typed input, so a loaded value reproduces exactly the state of a fresh
// entry.
func (s Settings) Apply(snap model.Snapshot) model.Snapshot {
	snap.CapacityKWh = sanitize.Capacity(s.Capacity)
	snap.ReserveSoC = sanitize.Percent(s.Reserve)
	snap.MaxSoC = sanitize.Percent(s.Max)
	return snap
}

// FromSnapshot extracts the persistable trio from a snapshot, encoded as
// shortest-form decimal strings.
func FromSnapshot(snap model.Snapshot) Settings {
	return Settings{
		Capacity: strconv.FormatFloat(snap.CapacityKWh, 'f', -1, 64),
		Reserve:  strconv.FormatFloat(snap.ReserveSoC, 'f', -1, 64),
		Max:      strconv.FormatFloat(snap.MaxSoC, 'f', -1, 64),
	}
}
