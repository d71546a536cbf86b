package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/SSSOC-CAN/flux/core"
	"github.com/SSSOC-CAN/flux/intercept"
	"github.com/SSSOC-CAN/flux/kvdb"
	"github.com/SSSOC-CAN/flux/utils"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

var (
	defaultDataDir = utils.AppDataDir("flux", false)
)

// destroyer is a store which can be torn down on shutdown
type destroyer interface {
	Destroy()
	Wait(ctx context.Context) error
}

// environment holds what every command needs: config, logger, database and a context cancelled on interrupt
type environment struct {
	sync.Mutex
	cfg         core.Config
	logger      zerolog.Logger
	db          kvdb.Store
	ctx         context.Context
	cancel      context.CancelFunc
	interceptor *intercept.Interceptor
	stores      []destroyer
}

// fatal exits the process and prints out error information
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[fluxcli] %v\n", err)
	os.Exit(1)
}

// getEnvironment reads the config, applies global flag overrides and opens the database. The returned cleanup function
// destroys every tracked store before closing the database
func getEnvironment(ctx *cli.Context) (*environment, func(), error) {
	cfg, err := core.InitConfig(ctx.GlobalString("datadir"))
	if err != nil {
		return nil, nil, err
	}
	if ctx.GlobalIsSet("consoleoutput") {
		cfg.ConsoleOutput = ctx.GlobalBool("consoleoutput")
	}
	if lvl := ctx.GlobalString("loglevel"); lvl != "" {
		cfg.LogLevel = strings.ToUpper(lvl)
	}
	logger, logCloser, err := core.InitLogger(&cfg)
	if err != nil {
		return nil, nil, err
	}
	if err = core.NewSubLogger(&logger, "FLUX").LogWithErrors(cfg.LogLevel, fmt.Sprintf("logging at %s level to %s", cfg.LogLevel, cfg.LogFileDir)); err != nil {
		logCloser.Close()
		return nil, nil, err
	}
	db, err := kvdb.NewDB(cfg.DBPath)
	if err != nil {
		logCloser.Close()
		return nil, nil, err
	}
	interceptor, err := intercept.InitInterceptor(logger)
	if err != nil {
		db.Close()
		logCloser.Close()
		return nil, nil, err
	}
	ctxc, cancel := context.WithCancel(context.Background())
	env := &environment{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		ctx:         ctxc,
		cancel:      cancel,
		interceptor: interceptor,
	}
	go func() {
		<-interceptor.ShutdownChannel()
		env.shutdown()
	}()
	cleanUp := func() {
		interceptor.RequestShutdown()
		<-interceptor.ShutdownChannel()
		env.shutdown()
		env.Lock()
		defer env.Unlock()
		for _, s := range env.stores {
			if err := s.Wait(context.Background()); err != nil {
				logger.Error().Msg(fmt.Sprintf("could not wait for store: %v", err))
			}
		}
		if err := db.Close(); err != nil {
			logger.Error().Msg(fmt.Sprintf("could not close database: %v", err))
		}
		if err := logCloser.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[fluxcli] could not close log file: %v\n", err)
		}
	}
	return env, cleanUp, nil
}

// track registers a store to be destroyed on shutdown
func (env *environment) track(s destroyer) {
	env.Lock()
	defer env.Unlock()
	env.stores = append(env.stores, s)
}

// shutdown cancels the command context and destroys every tracked store
func (env *environment) shutdown() {
	env.cancel()
	env.Lock()
	defer env.Unlock()
	for _, s := range env.stores {
		s.Destroy()
	}
}

// subLogger returns the environment logger tagged with subsystem
func (env *environment) subLogger(subsystem string) zerolog.Logger {
	return core.NewSubLogger(&env.logger, subsystem).SubLogger
}

// newApp builds the fluxcli application writing its output to w
func newApp(w io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "fluxcli"
	app.Usage = "Manage ad dashboard preferences and search the account hierarchy"
	app.Writer = w
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:      "datadir",
			Value:     defaultDataDir,
			Usage:     "The directory holding config.yaml, the preferences database and the log files",
			TakesFile: true,
		},
		cli.BoolFlag{
			Name:  "consoleoutput",
			Usage: "Whether log information is printed to the console",
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "One of TRACE, DEBUG, INFO, WARN, ERROR",
		},
	}
	app.Commands = []cli.Command{
		columnsCommand,
		metricsCommand,
		navCommand,
	}
	return app
}

// main is the entrypoint for fluxcli
func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fatal(err)
	}
}
