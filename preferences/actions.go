package preferences

import (
	"github.com/SSSOC-CAN/flux/state"
)

const (
	SetColumnsKind   state.Kind = "preferences/columns/set"
	SetMetricsKind   state.Kind = "preferences/metrics/set"
	LoadedKind       state.Kind = "preferences/loaded"
	LoadKind         state.Kind = "preferences/load"
	SaveColumnsKind  state.Kind = "preferences/columns/save"
	ToggleColumnKind state.Kind = "preferences/columns/toggle"
	SaveMetricsKind  state.Kind = "preferences/metrics/save"
)

// SetColumnsAction commits the visible columns of a grid
type SetColumnsAction struct {
	Grid    string
	Columns []string
}

func (SetColumnsAction) Kind() state.Kind { return SetColumnsKind }

// SetMetricsAction commits the metric selection of a chart
type SetMetricsAction struct {
	Chart     string
	Selection MetricSelection
}

func (SetMetricsAction) Kind() state.Kind { return SetMetricsKind }

// LoadedAction commits preferences read from storage on top of the current ones
type LoadedAction struct {
	Preferences Preferences
}

func (LoadedAction) Kind() state.Kind { return LoadedKind }

// LoadAction reads the saved preferences of the given grids and charts
type LoadAction struct {
	Grids               []string
	Charts              []string
	RequestStateUpdater state.RequestStateUpdater
}

func (LoadAction) Kind() state.Kind { return LoadKind }

// SaveColumnsAction persists and commits the visible columns of a grid
type SaveColumnsAction struct {
	Grid                string
	Columns             []string
	RequestStateUpdater state.RequestStateUpdater
}

func (SaveColumnsAction) Kind() state.Kind { return SaveColumnsKind }

// ToggleColumnAction shows a hidden column or hides a visible one
type ToggleColumnAction struct {
	Grid                string
	Column              string
	RequestStateUpdater state.RequestStateUpdater
}

func (ToggleColumnAction) Kind() state.Kind { return ToggleColumnKind }

// SaveMetricsAction persists and commits the metric selection of a chart
type SaveMetricsAction struct {
	Chart               string
	Selection           MetricSelection
	RequestStateUpdater state.RequestStateUpdater
}

func (SaveMetricsAction) Kind() state.Kind { return SaveMetricsKind }
