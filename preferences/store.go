// Package preferences keeps grid column visibility and chart metric selection,
// persisted through a kvdb.Store.
package preferences

import (
	"github.com/SSSOC-CAN/flux/kvdb"
	"github.com/SSSOC-CAN/flux/state"
	"github.com/rs/zerolog"
)

const StoreName = "PREF"

// Defaults are the preferences used for grids and charts with nothing saved
type Defaults struct {
	Columns map[string][]string        `yaml:"Columns"`
	Metrics map[string]MetricSelection `yaml:"Metrics"`
}

type provider struct {
	db     kvdb.Store
	logger zerolog.Logger
}

// Provide declares the preferences action table
func (p *provider) Provide() []state.Registration[Preferences] {
	columns := &columnWriter{db: p.db}
	return []state.Registration[Preferences]{
		state.ReducerFor[Preferences](SetColumnsKind, setColumnsReducer),
		state.ReducerFor[Preferences](SetMetricsKind, setMetricsReducer),
		state.ReducerFor[Preferences](LoadedKind, loadedReducer),
		state.EffectFor[Preferences](LoadKind, func(d state.Dispatcher) state.Effect[Preferences] {
			return &loadEffect{BaseEffect: state.NewBaseEffect(d), db: p.db, logger: p.logger}
		}),
		state.EffectFor[Preferences](SaveColumnsKind, func(d state.Dispatcher) state.Effect[Preferences] {
			return &saveColumnsEffect{BaseEffect: state.NewBaseEffect(d), columns: columns}
		}),
		state.EffectFor[Preferences](ToggleColumnKind, func(d state.Dispatcher) state.Effect[Preferences] {
			t := &toggleColumnEffect{BaseEffect: state.NewBaseEffect(d), columns: columns}
			if r, ok := d.(state.StateReader[Preferences]); ok {
				t.current = r.GetState
			}
			return t
		}),
		state.EffectFor[Preferences](SaveMetricsKind, func(d state.Dispatcher) state.Effect[Preferences] {
			return &saveMetricsEffect{BaseEffect: state.NewBaseEffect(d), db: p.db}
		}),
	}
}

// InitialState builds the preferences state from defaults
func InitialState(defaults Defaults) Preferences {
	p := Preferences{
		Columns: make(map[string][]string, len(defaults.Columns)),
		Metrics: make(map[string]MetricSelection, len(defaults.Metrics)),
	}
	for grid, columns := range defaults.Columns {
		p.Columns[grid] = append([]string(nil), columns...)
	}
	for chart, selection := range defaults.Metrics {
		p.Metrics[chart] = selection
	}
	return p
}

// NewStore creates the preferences store backed by db
func NewStore(db kvdb.Store, defaults Defaults, logger zerolog.Logger) (*state.Store[Preferences], error) {
	return state.New(
		InitialState(defaults),
		&provider{db: db, logger: logger},
		state.WithName(StoreName),
		state.WithLogger(logger),
	)
}
