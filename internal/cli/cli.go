// Package cli builds the tally command line: the HTTP server and one-shot
// reports over the same service.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/pkg/logger"
)

// env carries what Before resolved to every subcommand.
type env struct {
	cfg *config.Config
	log logger.Logger
	out io.Writer
}

// Run parses args and executes the selected command.
func Run(ctx context.Context, args []string, version string) error {
	return newCommand(version, os.Stdout).Run(ctx, args)
}

func newCommand(version string, out io.Writer) *cli.Command {
	var configPath string
	e := &env{out: out}

	return &cli.Command{
		Name:    "tally",
		Usage:   "Attendance tally over a spreadsheet web app",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "YAML config file layered under TALLY_* env vars",
				Sources:     cli.EnvVars(config.EnvConfigFile),
				Destination: &configPath,
			},
		},
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			cfg, err := config.LoadFrom(ctx, configPath)
			if err != nil {
				return ctx, goerr.Wrap(err, "load config")
			}
			// Reports go to out; logs stay on stderr.
			if err := logger.InitWith(logger.Options{Format: cfg.LogFormat, Output: os.Stderr}); err != nil {
				return ctx, goerr.Wrap(err, "init logger")
			}
			log := logger.Get()
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			e.cfg = cfg
			e.log = log
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(e),
			cmdSummary(e),
			cmdEvents(e),
			cmdRefresh(e),
			cmdPing(e),
		},
	}
}
