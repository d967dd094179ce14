// Package cli is the worklog command line. Each invocation opens the
// configured store, loads the directory and ledger, runs one command and
// closes the store again; the session survives between invocations in the
// store itself.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/ports"
	"github.com/safad/worklog/internal/core/service"
	"github.com/safad/worklog/internal/infrastructure/config"
	"github.com/safad/worklog/internal/infrastructure/db"
	"github.com/safad/worklog/internal/metrics"
)

// Deps are the collaborators of the command line. Zero-valued optional
// fields fall back to the production implementations.
type Deps struct {
	Config *config.Config
	Log    zerolog.Logger

	// OpenStore defaults to db.Open.
	OpenStore func(ctx context.Context, cfg *config.Config) (ports.KVStore, error)
	// Clock defaults to the system clock.
	Clock ports.Clock
}

type cli struct {
	deps     Deps
	cfg      config.Config
	app      *service.App
	validate *formValidator

	storeFlag   string
	dataDirFlag string
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, deps Deps, args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{deps: deps, cfg: *deps.Config, validate: newFormValidator()}
	if c.deps.OpenStore == nil {
		c.deps.OpenStore = func(ctx context.Context, cfg *config.Config) (ports.KVStore, error) {
			return db.Open(ctx, cfg, deps.Log)
		}
	}

	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	c.shutdown()
	if err != nil {
		code, msg := resolveError(err, c.deps.Log)
		fmt.Fprintln(errOut, "error: "+msg)
		return code
	}
	return exitOK
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "worklog",
		Short:         "Log daily work records and review team attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context())
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.storeFlag, "store", "", "storage backend: memory, file, redis, mongo, postgres or sqlite (overrides "+config.Prefix+"STORE)")
	pf.StringVar(&c.dataDirFlag, "data-dir", "", "directory of the file and sqlite stores (overrides "+config.Prefix+"DATA_DIR)")

	root.AddCommand(
		c.registerCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.usersCommand(),
		c.recordsCommand(),
		c.dashboardCommand(),
		c.attendanceCommand(),
		c.exportCommand(),
		c.statusCommand(),
	)
	return root
}

// open applies flag overrides, connects the store and loads the state.
func (c *cli) open(ctx context.Context) error {
	if c.storeFlag != "" {
		c.cfg.Store = c.storeFlag
	}
	if c.dataDirFlag != "" {
		c.cfg.DataDir = c.dataDirFlag
		c.cfg.SQLite.Path = filepath.Join(c.dataDirFlag, "worklog.db")
	}
	if err := c.cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	loc, err := c.cfg.Location()
	if err != nil {
		return err
	}

	store, err := c.deps.OpenStore(ctx, &c.cfg)
	if err != nil {
		return err
	}

	log := c.deps.Log
	app, err := service.Open(ctx, store, service.Options{
		Clock:            c.deps.Clock,
		Location:         loc,
		BcryptCost:       c.cfg.BcryptCost,
		SimulatedLatency: c.cfg.SimulatedLatency,
		Logger:           &log,
	})
	if err != nil {
		_ = store.Close()
		return err
	}
	c.app = app
	return nil
}

func (c *cli) shutdown() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.deps.Log.Warn().Err(err).Msg("close store")
		}
		c.app = nil
	}
	if c.cfg.MetricsFile != "" {
		if err := metrics.Flush(c.cfg.MetricsFile); err != nil {
			c.deps.Log.Warn().Err(err).Str("path", c.cfg.MetricsFile).Msg("flush metrics")
		}
	}
}

// usageArgs turns positional argument errors into usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
