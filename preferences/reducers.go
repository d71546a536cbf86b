package preferences

import (
	"github.com/SSSOC-CAN/flux/errors"
	"github.com/SSSOC-CAN/flux/state"
)

// MetricSelection is the pair of metrics plotted on a chart
type MetricSelection struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

// Preferences is the state of the preferences store
type Preferences struct {
	// Columns maps a grid name to its visible columns in display order
	Columns map[string][]string
	// Metrics maps a chart name to its metric selection
	Metrics map[string]MetricSelection
}

// VisibleColumns returns a copy of the visible columns of grid
func (p Preferences) VisibleColumns(grid string) []string {
	return append([]string(nil), p.Columns[grid]...)
}

// IsVisible reports whether column is visible in grid
func (p Preferences) IsVisible(grid, column string) bool {
	for _, c := range p.Columns[grid] {
		if c == column {
			return true
		}
	}
	return false
}

func (p Preferences) withColumns(grid string, columns []string) Preferences {
	next := p
	next.Columns = make(map[string][]string, len(p.Columns)+1)
	for k, v := range p.Columns {
		next.Columns[k] = v
	}
	next.Columns[grid] = append([]string(nil), columns...)
	return next
}

func (p Preferences) withMetrics(chart string, selection MetricSelection) Preferences {
	next := p
	next.Metrics = make(map[string]MetricSelection, len(p.Metrics)+1)
	for k, v := range p.Metrics {
		next.Metrics[k] = v
	}
	next.Metrics[chart] = selection
	return next
}

var (
	setColumnsReducer = state.ReducerFunc[Preferences](func(s Preferences, a state.Action) (Preferences, error) {
		act, ok := a.(SetColumnsAction)
		if !ok {
			return s, errors.ErrInvalidPayloadType
		}
		return s.withColumns(act.Grid, act.Columns), nil
	})
	setMetricsReducer = state.ReducerFunc[Preferences](func(s Preferences, a state.Action) (Preferences, error) {
		act, ok := a.(SetMetricsAction)
		if !ok {
			return s, errors.ErrInvalidPayloadType
		}
		return s.withMetrics(act.Chart, act.Selection), nil
	})
	loadedReducer = state.ReducerFunc[Preferences](func(s Preferences, a state.Action) (Preferences, error) {
		act, ok := a.(LoadedAction)
		if !ok {
			return s, errors.ErrInvalidPayloadType
		}
		next := s
		for grid, columns := range act.Preferences.Columns {
			next = next.withColumns(grid, columns)
		}
		for chart, selection := range act.Preferences.Metrics {
			next = next.withMetrics(chart, selection)
		}
		return next, nil
	})
)
