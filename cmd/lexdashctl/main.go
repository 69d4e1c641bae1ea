// Command lexdashctl administers a lexdash installation: API tokens, schema
// migrations, revenue export and record event inspection.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"lexdash/internal/backend"
	"lexdash/internal/cli"
	"lexdash/internal/config"
	applog "lexdash/internal/log"
)

// app carries what every subcommand needs once the root has loaded it.
type app struct {
	out    io.Writer
	cfg    *config.Config
	logger *applog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	var envFile string

	root := &cobra.Command{
		Use:           "lexdashctl",
		Short:         "Administer a lexdash installation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			boot := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
			if envFile != "" {
				cli.LoadEnvFile(boot, envFile)
			} else {
				cli.LoadEnvFile(boot)
			}
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentCLI)
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file instead of ./.env")

	root.AddCommand(
		newTokenCmd(a),
		newMigrateCmd(a),
		newExportCmd(a),
		newEventsCmd(a),
	)
	return root
}

// openBackend assembles the store and services without the event publisher;
// admin commands do not announce record changes.
func (a *app) openBackend(ctx context.Context) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	bc.AMQPURL = ""
	bc.TokenCacheSize = 0
	return backend.NewFactory(a.logger).CreateBackend(ctx, bc)
}

func (a *app) closeBackend(res *backend.BackendResult) {
	if err := res.Cleanup(); err != nil {
		a.logger.Warn("Backend cleanup failed", applog.FieldError, err)
	}
}
