package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/fiscaliza/internal/application/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/bootstrap"
	"github.com/bryanwahyu/fiscaliza/internal/config"
	"github.com/bryanwahyu/fiscaliza/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "fiscaliza",
		Short: "Screen municipal documents for signs of fraud",
		Long: `fiscaliza screens the text of municipal documents (ofícios, portarias,
processos) with five rules: repeated names, invalid dates, sensitive terms,
missing document number and procurement waiver ceiling.

Examples:
  fiscaliza analyze oficio.txt
  fiscaliza analyze scan.png --json
  fiscaliza lookup <sha256>
  fiscaliza rules`,
		SilenceUsage: true,
	}

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", path, "Path to config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newAnalyzeCmd(opts), newLookupCmd(opts), newRulesCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logging.New(o.logLevel, true, cmd.ErrOrStderr())
}

// service opens the configured stores; the caller closes them.
func (o *rootOptions) service(ctx context.Context, cmd *cobra.Command) (*appanalysis.Service, *bootstrap.Stores, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := bootstrap.NewService(cfg, stores, o.logger(cmd), nil)
	if err != nil {
		stores.Close()
		return nil, nil, err
	}
	return svc, stores, nil
}
