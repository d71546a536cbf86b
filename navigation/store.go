// Package navigation loads the account, campaign and ad group hierarchy and
// answers searches over it.
package navigation

import (
	"context"
	"fmt"

	"github.com/SSSOC-CAN/flux/errors"
	"github.com/SSSOC-CAN/flux/state"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	StoreName          = "NAV"
	LoadRequest        = "loadHierarchy"
	defaultConcurrency = 4
)

const (
	SetHierarchyKind  state.Kind = "navigation/hierarchy/set"
	SetSearchKind     state.Kind = "navigation/search/set"
	LoadHierarchyKind state.Kind = "navigation/hierarchy/load"
)

// Navigation is the state of the navigation store
type Navigation struct {
	Hierarchy       []Entity
	Loaded          bool
	Search          string
	IncludeArchived bool
}

// Results returns the flattened entities matching the current search
func (n Navigation) Results() []Item {
	return Flatten(Filter(n.Hierarchy, n.Search, n.IncludeArchived))
}

// SetHierarchyAction commits a freshly loaded hierarchy
type SetHierarchyAction struct {
	Hierarchy []Entity
}

func (SetHierarchyAction) Kind() state.Kind { return SetHierarchyKind }

// SetSearchAction commits the search term
type SetSearchAction struct {
	Term            string
	IncludeArchived bool
}

func (SetSearchAction) Kind() state.Kind { return SetSearchKind }

// LoadHierarchyAction fetches the whole hierarchy from the endpoint
type LoadHierarchyAction struct {
	RequestStateUpdater state.RequestStateUpdater
}

func (LoadHierarchyAction) Kind() state.Kind { return LoadHierarchyKind }

var (
	setHierarchyReducer = state.ReducerFunc[Navigation](func(s Navigation, a state.Action) (Navigation, error) {
		act, ok := a.(SetHierarchyAction)
		if !ok {
			return s, errors.ErrInvalidPayloadType
		}
		s.Hierarchy = act.Hierarchy
		s.Loaded = true
		return s, nil
	})
	setSearchReducer = state.ReducerFunc[Navigation](func(s Navigation, a state.Action) (Navigation, error) {
		act, ok := a.(SetSearchAction)
		if !ok {
			return s, errors.ErrInvalidPayloadType
		}
		s.Search = act.Term
		s.IncludeArchived = act.IncludeArchived
		return s, nil
	})
)

type loadHierarchyEffect struct {
	*state.BaseEffect
	endpoint    Endpoint
	concurrency int
	logger      zerolog.Logger
}

// Effect fetches accounts, then every account's campaigns and every campaign's
// ad groups concurrently, and commits the assembled tree. Only the most recent
// load stays in flight.
func (l *loadHierarchyEffect) Effect(ctx context.Context, _ Navigation, a state.Action) bool {
	act, ok := a.(LoadHierarchyAction)
	if !ok {
		return false
	}
	ctx, cancel := l.Switch(ctx)
	defer cancel()
	tree, ok := state.Request(ctx, l.BaseEffect, LoadRequest, act.RequestStateUpdater, l.fetch)
	if !ok || ctx.Err() != nil {
		return false
	}
	l.logger.Debug().Msg(fmt.Sprintf("loaded %v accounts", len(tree)))
	return l.Dispatch(ctx, SetHierarchyAction{Hierarchy: tree}) == nil
}

// fetch assembles the hierarchy from the endpoint
func (l *loadHierarchyEffect) fetch(ctx context.Context) ([]Entity, error) {
	accounts, err := l.endpoint.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := range accounts {
		i := i
		g.Go(func() error {
			campaigns, err := l.endpoint.ListCampaigns(gctx, accounts[i].ID)
			if err != nil {
				return err
			}
			for j := range campaigns {
				adGroups, err := l.endpoint.ListAdGroups(gctx, campaigns[j].ID)
				if err != nil {
					return err
				}
				sortByName(adGroups)
				campaigns[j].Children = adGroups
			}
			sortByName(campaigns)
			accounts[i].Children = campaigns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortByName(accounts)
	return accounts, nil
}

type provider struct {
	endpoint    Endpoint
	concurrency int
	logger      zerolog.Logger
}

// Provide declares the navigation action table
func (p *provider) Provide() []state.Registration[Navigation] {
	return []state.Registration[Navigation]{
		state.ReducerFor[Navigation](SetHierarchyKind, setHierarchyReducer),
		state.ReducerFor[Navigation](SetSearchKind, setSearchReducer),
		state.EffectFor[Navigation](LoadHierarchyKind, func(d state.Dispatcher) state.Effect[Navigation] {
			return &loadHierarchyEffect{
				BaseEffect:  state.NewBaseEffect(d),
				endpoint:    p.endpoint,
				concurrency: p.concurrency,
				logger:      p.logger,
			}
		}),
	}
}

// NewStore creates the navigation store fetching from endpoint with at most
// concurrency accounts loaded in parallel. A concurrency below one uses the default.
func NewStore(endpoint Endpoint, concurrency int, logger zerolog.Logger) (*state.Store[Navigation], error) {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return state.New(
		Navigation{},
		&provider{endpoint: endpoint, concurrency: concurrency, logger: logger},
		state.WithName(StoreName),
		state.WithLogger(logger),
	)
}
