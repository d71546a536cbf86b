package preferences

import (
	"context"
	"fmt"
	"sync"

	"github.com/SSSOC-CAN/flux/errors"
	"github.com/SSSOC-CAN/flux/kvdb"
	"github.com/SSSOC-CAN/flux/state"
	bg "github.com/SSSOCPaulCote/blunderguard"
	"github.com/rs/zerolog"
)

const (
	ErrEmptyGrid         = bg.Error("grid name must not be empty")
	ErrEmptyChart        = bg.Error("chart name must not be empty")
	ErrNoColumns         = bg.Error("at least one column must be visible")
	ErrLastVisibleColumn = bg.Error("cannot hide the last visible column")
	ErrNoPrimaryMetric   = bg.Error("a primary metric is required")
	ErrDuplicateMetric   = bg.Error("primary and secondary metrics must differ")

	LoadRequest        = "loadPreferences"
	SaveColumnsRequest = "saveColumns"
	SaveMetricsRequest = "saveMetrics"
	columnsKeyPrefix   = "columns/"
	metricsKeyPrefix   = "metrics/"
)

func columnsKey(grid string) string { return columnsKeyPrefix + grid }

func metricsKey(chart string) string { return metricsKeyPrefix + chart }

// reportInvalid records a validation failure the way a failed request would be recorded
func reportInvalid(update state.RequestStateUpdater, name string, err error) bool {
	if update != nil {
		update(name, state.FailedPatch(err))
	}
	return false
}

type loadEffect struct {
	*state.BaseEffect
	db     kvdb.Store
	logger zerolog.Logger
}

// Effect reads every requested grid and chart and commits what was found in one LoadedAction
func (l *loadEffect) Effect(ctx context.Context, _ Preferences, a state.Action) bool {
	act, ok := a.(LoadAction)
	if !ok {
		l.logger.Error().Msg(fmt.Sprintf("%v: %T", errors.ErrInvalidPayloadType, a))
		return false
	}
	loaded, ok := state.Request(ctx, l.BaseEffect, LoadRequest, act.RequestStateUpdater, func(context.Context) (Preferences, error) {
		p := Preferences{Columns: make(map[string][]string), Metrics: make(map[string]MetricSelection)}
		for _, grid := range act.Grids {
			var columns []string
			found, err := l.db.Load(columnsKey(grid), &columns)
			if err != nil {
				return p, err
			}
			if found && len(columns) > 0 {
				p.Columns[grid] = columns
			}
		}
		for _, chart := range act.Charts {
			var selection MetricSelection
			found, err := l.db.Load(metricsKey(chart), &selection)
			if err != nil {
				return p, err
			}
			if found {
				p.Metrics[chart] = selection
			}
		}
		return p, nil
	})
	if !ok {
		return false
	}
	l.logger.Debug().Msg(fmt.Sprintf("loaded %v grids and %v charts", len(loaded.Columns), len(loaded.Metrics)))
	return l.Dispatch(ctx, LoadedAction{Preferences: loaded}) == nil
}

// columnWriter serializes column writes of one store. Each write computes,
// persists and commits while holding the lock, so the database and the state
// agree on the order of writes.
type columnWriter struct {
	sync.Mutex
	db kvdb.Store
}

// save writes columns to db and commits them once the write succeeded. The
// caller must hold the lock. The write is not abandoned when ctx is cancelled,
// only when the effect is destroyed.
func (w *columnWriter) save(ctx context.Context, b *state.BaseEffect, grid string, columns []string, update state.RequestStateUpdater) bool {
	_, ok := state.Request(context.WithoutCancel(ctx), b, SaveColumnsRequest, update, func(context.Context) (struct{}, error) {
		return struct{}{}, w.db.Save(columnsKey(grid), columns)
	})
	if !ok {
		return false
	}
	return b.Dispatch(ctx, SetColumnsAction{Grid: grid, Columns: columns}) == nil
}

type saveColumnsEffect struct {
	*state.BaseEffect
	columns *columnWriter
}

// Effect persists the columns before committing them
func (s *saveColumnsEffect) Effect(ctx context.Context, _ Preferences, a state.Action) bool {
	act, ok := a.(SaveColumnsAction)
	if !ok {
		return false
	}
	if act.Grid == "" {
		return reportInvalid(act.RequestStateUpdater, SaveColumnsRequest, ErrEmptyGrid)
	}
	columns := dedupe(act.Columns)
	if len(columns) == 0 {
		return reportInvalid(act.RequestStateUpdater, SaveColumnsRequest, ErrNoColumns)
	}
	s.columns.Lock()
	defer s.columns.Unlock()
	return s.columns.save(ctx, s.BaseEffect, act.Grid, columns, act.RequestStateUpdater)
}

type toggleColumnEffect struct {
	*state.BaseEffect
	columns *columnWriter
	current func() Preferences
}

// Effect flips the visibility of one column. Toggles are applied one at a time,
// each to the columns committed by the previous one.
func (t *toggleColumnEffect) Effect(ctx context.Context, snapshot Preferences, a state.Action) bool {
	act, ok := a.(ToggleColumnAction)
	if !ok {
		return false
	}
	if act.Grid == "" {
		return reportInvalid(act.RequestStateUpdater, SaveColumnsRequest, ErrEmptyGrid)
	}
	t.columns.Lock()
	defer t.columns.Unlock()
	if t.current != nil {
		snapshot = t.current()
	}
	columns, err := toggle(snapshot, act.Grid, act.Column)
	if err != nil {
		return reportInvalid(act.RequestStateUpdater, SaveColumnsRequest, err)
	}
	return t.columns.save(ctx, t.BaseEffect, act.Grid, columns, act.RequestStateUpdater)
}

// toggle returns the visible columns of grid with column hidden if it was visible and shown otherwise
func toggle(p Preferences, grid, column string) ([]string, error) {
	if !p.IsVisible(grid, column) {
		return append(p.VisibleColumns(grid), column), nil
	}
	var columns []string
	for _, c := range p.Columns[grid] {
		if c != column {
			columns = append(columns, c)
		}
	}
	if len(columns) == 0 {
		return nil, ErrLastVisibleColumn
	}
	return columns, nil
}

type saveMetricsEffect struct {
	*state.BaseEffect
	db kvdb.Store
}

// Effect validates and persists a chart's metric selection before committing it
func (s *saveMetricsEffect) Effect(ctx context.Context, _ Preferences, a state.Action) bool {
	act, ok := a.(SaveMetricsAction)
	if !ok {
		return false
	}
	switch {
	case act.Chart == "":
		return reportInvalid(act.RequestStateUpdater, SaveMetricsRequest, ErrEmptyChart)
	case act.Selection.Primary == "":
		return reportInvalid(act.RequestStateUpdater, SaveMetricsRequest, ErrNoPrimaryMetric)
	case act.Selection.Primary == act.Selection.Secondary:
		return reportInvalid(act.RequestStateUpdater, SaveMetricsRequest, ErrDuplicateMetric)
	}
	_, ok = state.Request(ctx, s.BaseEffect, SaveMetricsRequest, act.RequestStateUpdater, func(context.Context) (struct{}, error) {
		return struct{}{}, s.db.Save(metricsKey(act.Chart), act.Selection)
	})
	if !ok {
		return false
	}
	return s.Dispatch(ctx, SetMetricsAction{Chart: act.Chart, Selection: act.Selection}) == nil
}

// dedupe drops empty and repeated column names, keeping the first occurrence
func dedupe(columns []string) []string {
	seen := make(map[string]struct{}, len(columns))
	var out []string
	for _, c := range columns {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
