package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SSSOC-CAN/flux/navigation"
	"github.com/SSSOC-CAN/flux/preferences"
	"github.com/SSSOC-CAN/flux/state"
	"github.com/SSSOC-CAN/flux/utils"
	bg "github.com/SSSOCPaulCote/blunderguard"
	e "github.com/pkg/errors"
	"github.com/urfave/cli"
	yaml "gopkg.in/yaml.v2"
)

const (
	ErrRequestFailed = bg.Error("request failed")
)

// dispatch dispatches a on store and waits for its promise. A false result is turned into an error carrying the
// message of the named request
func dispatch[S any](ctx context.Context, store *state.Store[S], requests *state.RequestStates, requestName string, a state.Action) error {
	p, err := store.Dispatch(ctx, a)
	if err != nil {
		return err
	}
	ok, err := p.Wait(ctx)
	if err != nil {
		return err
	}
	if !ok {
		if r := requests.Get(requestName); r.ErrorMessage != "" {
			return e.Wrap(ErrRequestFailed, r.ErrorMessage)
		}
		return e.Wrap(ErrRequestFailed, requestName)
	}
	return nil
}

// printYAML writes v to w as yaml
func printYAML(w io.Writer, v interface{}) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// getPreferencesStore creates the preferences store and loads what was saved for grids and charts
func getPreferencesStore(env *environment, requests *state.RequestStates, grids, charts []string) (*state.Store[preferences.Preferences], error) {
	store, err := preferences.NewStore(env.db, env.cfg.Preferences, env.subLogger(preferences.StoreName))
	if err != nil {
		return nil, err
	}
	env.track(store)
	err = dispatch(env.ctx, store, requests, preferences.LoadRequest, preferences.LoadAction{
		Grids:               grids,
		Charts:              charts,
		RequestStateUpdater: requests.Update,
	})
	if err != nil {
		return nil, e.Wrap(err, "could not load preferences")
	}
	return store, nil
}

var columnsCommand = cli.Command{
	Name:  "columns",
	Usage: "Show and change the visible columns of a grid",
	Subcommands: []cli.Command{
		{
			Name:      "show",
			Usage:     "Print the visible columns of a grid",
			ArgsUsage: "grid",
			Action:    showColumns,
		},
		{
			Name:      "toggle",
			Usage:     "Hide a visible column or show a hidden one",
			ArgsUsage: "grid column",
			Description: `
	Toggles the visibility of a column. The last visible column of a grid cannot be hidden.`,
			Action: toggleColumn,
		},
		{
			Name:      "set",
			Usage:     "Replace the visible columns of a grid",
			ArgsUsage: "grid column [column...]",
			Action:    setColumns,
		},
	},
}

// printColumns prints the visible columns of grid
func printColumns(ctx *cli.Context, p preferences.Preferences, grid string) error {
	return printYAML(ctx.App.Writer, map[string][]string{grid: p.VisibleColumns(grid)})
}

// showColumns is the action of `columns show`
func showColumns(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "show")
	}
	grid := ctx.Args().First()
	env, cleanUp, err := getEnvironment(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()
	store, err := getPreferencesStore(env, state.NewRequestStates(), []string{grid}, nil)
	if err != nil {
		return err
	}
	return printColumns(ctx, store.GetState(), grid)
}

// toggleColumn is the action of `columns toggle`
func toggleColumn(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.ShowCommandHelp(ctx, "toggle")
	}
	grid, column := ctx.Args().Get(0), ctx.Args().Get(1)
	env, cleanUp, err := getEnvironment(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()
	requests := state.NewRequestStates()
	store, err := getPreferencesStore(env, requests, []string{grid}, nil)
	if err != nil {
		return err
	}
	err = dispatch(env.ctx, store, requests, preferences.SaveColumnsRequest, preferences.ToggleColumnAction{
		Grid:                grid,
		Column:              column,
		RequestStateUpdater: requests.Update,
	})
	if err != nil {
		return err
	}
	return printColumns(ctx, store.GetState(), grid)
}

// setColumns is the action of `columns set`
func setColumns(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return cli.ShowCommandHelp(ctx, "set")
	}
	grid := ctx.Args().First()
	env, cleanUp, err := getEnvironment(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()
	requests := state.NewRequestStates()
	store, err := getPreferencesStore(env, requests, []string{grid}, nil)
	if err != nil {
		return err
	}
	err = dispatch(env.ctx, store, requests, preferences.SaveColumnsRequest, preferences.SaveColumnsAction{
		Grid:                grid,
		Columns:             ctx.Args().Tail(),
		RequestStateUpdater: requests.Update,
	})
	if err != nil {
		return err
	}
	return printColumns(ctx, store.GetState(), grid)
}

var metricsCommand = cli.Command{
	Name:  "metrics",
	Usage: "Show and change the metrics plotted on a chart",
	Subcommands: []cli.Command{
		{
			Name:      "show",
			Usage:     "Print the metrics selected for a chart",
			ArgsUsage: "chart",
			Action:    showMetrics,
		},
		{
			Name:      "set",
			Usage:     "Select the primary and optional secondary metric of a chart",
			ArgsUsage: "chart primary [secondary]",
			Action:    setMetrics,
		},
	},
}

// printMetrics prints the metric selection of chart
func printMetrics(ctx *cli.Context, p preferences.Preferences, chart string) error {
	return printYAML(ctx.App.Writer, map[string]preferences.MetricSelection{chart: p.Metrics[chart]})
}

// showMetrics is the action of `metrics show`
func showMetrics(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "show")
	}
	chart := ctx.Args().First()
	env, cleanUp, err := getEnvironment(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()
	store, err := getPreferencesStore(env, state.NewRequestStates(), nil, []string{chart})
	if err != nil {
		return err
	}
	return printMetrics(ctx, store.GetState(), chart)
}

// setMetrics is the action of `metrics set`
func setMetrics(ctx *cli.Context) error {
	if ctx.NArg() < 2 || ctx.NArg() > 3 {
		return cli.ShowCommandHelp(ctx, "set")
	}
	chart := ctx.Args().First()
	env, cleanUp, err := getEnvironment(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()
	requests := state.NewRequestStates()
	store, err := getPreferencesStore(env, requests, nil, []string{chart})
	if err != nil {
		return err
	}
	err = dispatch(env.ctx, store, requests, preferences.SaveMetricsRequest, preferences.SaveMetricsAction{
		Chart: chart,
		Selection: preferences.MetricSelection{
			Primary:   ctx.Args().Get(1),
			Secondary: ctx.Args().Get(2),
		},
		RequestStateUpdater: requests.Update,
	})
	if err != nil {
		return err
	}
	return printMetrics(ctx, store.GetState(), chart)
}

var navCommand = cli.Command{
	Name:  "nav",
	Usage: "Browse the account, campaign and ad group hierarchy",
	Subcommands: []cli.Command{
		{
			Name:      "search",
			Usage:     "Search the hierarchy by name or ID",
			ArgsUsage: "[term]",
			Description: `
	Loads the hierarchy and prints every entity whose name or ID contains the term, together with its parents.
	An empty term prints the whole hierarchy.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:      "file",
					Usage:     "The hierarchy file to search. Defaults to the HierarchyFile of config.yaml",
					TakesFile: true,
				},
				cli.BoolFlag{
					Name:  "archived",
					Usage: "Include archived campaigns and ad groups",
				},
				cli.StringFlag{
					Name:      "out",
					Usage:     "Also save the results as yaml to this file. An existing file is never overwritten",
					TakesFile: true,
				},
			},
			Action: searchHierarchy,
		},
	},
}

// formatItem renders a search result as an indented line
func formatItem(item navigation.Item) string {
	line := fmt.Sprintf("%s%s (%s %s)", strings.Repeat("  ", item.Depth), item.Name, item.Type, item.ID)
	if item.Archived {
		line += " [archived]"
	}
	return line
}

// searchHierarchy is the action of `nav search`
func searchHierarchy(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return cli.ShowCommandHelp(ctx, "search")
	}
	env, cleanUp, err := getEnvironment(ctx)
	if err != nil {
		return err
	}
	defer cleanUp()
	file := ctx.String("file")
	if file == "" {
		file = env.cfg.HierarchyFile
	}
	store, err := navigation.NewStore(navigation.NewFileEndpoint(file), int(env.cfg.Concurrency), env.subLogger(navigation.StoreName))
	if err != nil {
		return err
	}
	env.track(store)
	requests := state.NewRequestStates()
	if err = dispatch(env.ctx, store, requests, navigation.LoadRequest, navigation.LoadHierarchyAction{RequestStateUpdater: requests.Update}); err != nil {
		return e.Wrap(err, "could not load hierarchy")
	}
	if _, err = store.Dispatch(env.ctx, navigation.SetSearchAction{Term: ctx.Args().First(), IncludeArchived: ctx.Bool("archived")}); err != nil {
		return err
	}
	results := store.GetState().Results()
	for _, item := range results {
		fmt.Fprintln(ctx.App.Writer, formatItem(item))
	}
	if out := ctx.String("out"); out != "" {
		out = utils.UniqueFileName(out)
		b, err := yaml.Marshal(results)
		if err != nil {
			return err
		}
		if err = os.WriteFile(out, b, 0644); err != nil {
			return err
		}
		env.logger.Info().Msg(fmt.Sprintf("saved %v results to %s", len(results), out))
	}
	return nil
}
