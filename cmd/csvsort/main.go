// Command csvsort sorts CSV files larger than memory by one column.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lanrat/csvsort/logctx"
)

// app holds the state shared by the commands of one invocation
type app struct {
	root       *cobra.Command
	v          *viper.Viper
	cfg        *cliConfig
	configFile string
	closeLog   func() error
}

func newApp() *app {
	a := &app{v: viper.New(), closeLog: func() error { return nil }}
	d := defaultCLIConfig()

	a.root = &cobra.Command{
		Use:          "csvsort",
		Short:        "Sort large CSV files by one column",
		Long:         `Sort CSV files that do not fit in memory with an external merge sort, generate test data and check sortedness.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	a.root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./csvsort.yaml if present)")
	a.root.PersistentFlags().String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	a.root.PersistentFlags().String("log-file", d.LogFile, "also write JSON logs to this file")

	a.root.AddCommand(a.sortCmd(), a.verifyCmd(), a.generateCmd())
	return a
}

// setup loads the configuration for cmd and installs the logger
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.v, cmd.Flags(), a.configFile)
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogging(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.closeLog = closeLog
	slog.SetDefault(logger)
	cmd.SetContext(logctx.WithLogger(cmd.Context(), logger))
	return nil
}

// addColumnFlags registers the flags selecting the sort column and order
func addColumnFlags(cmd *cobra.Command, d cliConfig) {
	cmd.Flags().StringP("key", "k", d.Key, "name of the column to sort by")
	cmd.Flags().IntP("key-index", "i", d.KeyIndex, "zero-based index of the column to sort by")
	cmd.Flags().StringP("order", "o", d.Order, "ascending (asc) or descending (desc)")
	cmd.Flags().String("delimiter", d.Delimiter, `field delimiter, a single character or "tab"`)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp()
	err := a.root.ExecuteContext(ctx)
	stop()
	if cerr := a.closeLog(); cerr != nil {
		slog.Warn("failed to close log file", slog.Any("error", cerr))
	}
	if err != nil {
		os.Exit(1)
	}
}
