package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lanrat/csvsort"
	"github.com/lanrat/csvsort/logctx"
)

func (a *app) sortCmd() *cobra.Command {
	d := defaultCLIConfig()
	cmd := &cobra.Command{
		Use:   "sort FILE...",
		Short: "Sort CSV files by one column",
		Long: `Sort each FILE by one column into FILE_sorted (before the extension).
Rows that do not fit in the memory buffer are spilled to sorted runs in a
temporary directory, which is removed when the sort finishes or fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd.Context(), a.cfg, args, cmd.OutOrStdout())
		},
	}
	addColumnFlags(cmd, d)
	cmd.Flags().Float64P("buffer-mb", "b", d.BufferMB, "memory buffer per run in MiB")
	cmd.Flags().String("temp-dir", d.TempDir, "parent directory for temporary runs (default: a disk backed temp dir)")
	cmd.Flags().String("suffix", d.Suffix, "inserted before the extension to name the output")
	cmd.Flags().Int("max-fan-in", d.MaxFanIn, "merge at most this many runs at once, 0 for no limit")
	cmd.Flags().String("run-format", d.RunFormat, "format of temporary runs: csv or cbor")
	cmd.Flags().IntP("jobs", "j", d.Jobs, "number of files sorted in parallel")
	return cmd
}

// runSort sorts every file, up to cfg.Jobs at a time, and reports each result on out
func runSort(ctx context.Context, cfg *cliConfig, files []string, out io.Writer) error {
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
	log := logctx.FromContext(ctx)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Jobs, 1))
	for _, file := range files {
		g.Go(func() error {
			res, err := sorter.SortFile(ctx, file, col)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			if res.CleanupErr != nil {
				log.Warn("sorted, but temporary data was not fully removed", slog.String("input", file), slog.Any("error", res.CleanupErr))
			}
			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintf(out, "%s -> %s: %d rows, %d runs, %d merge passes\n", file, res.Output, res.Rows, res.Runs, res.MergePasses)
			return err
		})
	}
	return g.Wait()
}
