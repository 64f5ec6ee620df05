package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanrat/csvsort/datagen"
	"github.com/lanrat/csvsort/logctx"
)

func (a *app) generateCmd() *cobra.Command {
	var opts datagen.Options
	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Write a synthetic student table for testing",
		Long: `Write a CSV with the header id_aluno,nome,email and the ids 1..rows in
shuffled order. Use - as FILE to write to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			var file *os.File
			if args[0] != "-" {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				w, file = f, f
			}

			stats, err := datagen.Write(w, opts)
			if err != nil {
				return fmt.Errorf("generate %s: %w", args[0], err)
			}
			if file != nil {
				if err := file.Close(); err != nil {
					return err
				}
			}
			logctx.FromContext(cmd.Context()).Info("generated table",
				slog.String("output", args[0]),
				slog.Int64("rows", stats.Rows),
				slog.Int64("bytes", stats.Bytes),
			)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 1000, "number of data rows")
	cmd.Flags().Float64Var(&opts.TargetMB, "size-mb", 0, "stop once the file reaches this many MiB, 0 for no limit")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for reproducible output, 0 for random")
	cmd.Flags().StringVar(&opts.Domain, "domain", "example.com", "email domain")
	return cmd
}
