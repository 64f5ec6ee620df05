package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanrat/csvsort"
)

func (a *app) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Check that a CSV file is sorted by one column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), a.cfg, args[0], cmd.OutOrStdout())
		},
	}
	addColumnFlags(cmd, defaultCLIConfig())
	return cmd
}

func runVerify(ctx context.Context, cfg *cliConfig, file string, out io.Writer) error {
	sorterConfig, err := cfg.sorterConfig()
	if err != nil {
		return err
	}
	col, err := cfg.column()
	if err != nil {
		return err
	}
	sorter, err := csvsort.New(sorterConfig)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := sorter.Verify(ctx, f, col)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	_, err = fmt.Fprintf(out, "%s: %d rows in %s order by %s\n", file, n, sorterConfig.Order, col)
	return err
}
