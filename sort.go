// Package csvsort implements an external merge sort of CSV files by one column.
//
// The input is read in a single pass and cut into runs that fit the configured
// memory buffer. Each run is sorted in memory and persisted to a temporary
// namespace, then all runs are merged into the output with a k-way merge.
// The sort is stable: rows with equal keys keep their input order.
// Temporary runs are removed on every exit path, including failures.
package csvsort

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/lanrat/csvsort/codec"
	"github.com/lanrat/csvsort/logctx"
	"github.com/lanrat/csvsort/tempfile"
)

// Sorter sorts CSV tables with a fixed configuration.
// A Sorter holds no per-sort state and may be used by concurrent goroutines.
type Sorter struct {
	config   Config
	table    codec.Codec
	runCodec codec.Codec
}

// New returns a Sorter for config.
// config can be nil to use the defaults, or only set the non-default values desired.
// BufferSizeMB has no default and must be set.
func New(config *Config) (*Sorter, error) {
	c := mergeConfig(config)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	runCodec, err := codec.Lookup(c.RunFormat)
	if err != nil {
		return nil, &ConfigError{Field: "RunFormat", Value: c.RunFormat, Reason: err.Error()}
	}
	return &Sorter{
		config:   *c,
		table:    codec.NewCSV(c.Delimiter),
		runCodec: runCodec,
	}, nil
}

// Config returns the effective configuration, defaults included
func (s *Sorter) Config() Config {
	return s.config
}

// Result summarizes a completed sort
type Result struct {
	// Output is the path of the sorted file, empty when sorting to a stream
	Output string
	// Header is the input header, written unchanged as the first output row
	Header []string
	// KeyIndex is the resolved sort column
	KeyIndex int
	// Rows is the number of data rows sorted
	Rows int64
	// Runs is the number of runs created while splitting the input
	Runs int
	// MergePasses counts the final merge and any intermediate cascade passes
	MergePasses int
	// Bytes is the estimated size of all data rows
	Bytes int64
	// CleanupErr is set when the sort succeeded but temporary data could not be removed
	CleanupErr error
}

// Sort reads a CSV table from in and writes it to out sorted by col.
// Runs are kept in ns, which stays owned by the caller; every run Sort
// creates is removed from ns before it returns, whether it succeeds or not.
// An input without data rows fails with ErrEmptyInput and nothing is written to out.
func (s *Sorter) Sort(ctx context.Context, ns tempfile.Namespace, in io.Reader, out io.Writer, col Column) (*Result, error) {
	return s.sort(ctx, ns, in, "input", &streamOutput{w: out}, col)
}

// SortFile sorts the CSV file at inputPath by col into a sibling file named by
// OutputName, overwriting it if it exists. Runs live in a fresh namespace
// under Config.TempFilesDir which is torn down before SortFile returns.
// A missing input fails with ErrNotFound. The output is only created once the
// input is known to have data rows, and is removed again if the merge fails.
func (s *Sorter) SortFile(ctx context.Context, inputPath string, col Column) (res *Result, err error) {
	log := logctx.FromContext(ctx)

	f, err := os.Open(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, NewDiskError(err, "open input", inputPath)
	}
	defer f.Close()

	ns, err := tempfile.New(s.config.TempFilesDir)
	if err != nil {
		return nil, NewDiskError(err, "create temp namespace", s.config.TempFilesDir)
	}
	defer func() {
		if cerr := ns.Close(); cerr != nil {
			log.Warn("failed to remove temp namespace", slog.String("path", ns.Path()), slog.Any("error", cerr))
			if res != nil {
				res.CleanupErr = multierror.Append(res.CleanupErr, cerr).ErrorOrNil()
			}
		}
	}()

	out := &fileOutput{path: OutputName(inputPath, s.config.OutputSuffix)}
	res, err = s.sort(ctx, ns, f, inputPath, out, col)
	if err != nil {
		return nil, err
	}
	res.Output = out.path
	return res, nil
}

// OutputName returns the path of the sorted output for path: suffix is
// inserted between the base name and the extension, in the same directory.
// Leading dots of the base name are not treated as an extension.
func OutputName(path, suffix string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(strings.TrimLeft(base, "."))
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// splitResult is what the split phase learned about the input
type splitResult struct {
	header   Record
	keyIndex int
	runs     []RunInfo
	rows     int64
	bytes    int64
}

func (s *Sorter) sort(ctx context.Context, ns tempfile.Namespace, in io.Reader, source string, out output, col Column) (res *Result, err error) {
	log := logctx.FromContext(ctx).With(slog.String("input", source), slog.String("namespace", ns.Path()))
	ctx = logctx.WithLogger(ctx, log)

	runs := &runSet{ns: ns}
	defer func() {
		if cerr := runs.removeAll(); cerr != nil {
			log.Warn("failed to remove temporary runs", slog.Any("error", cerr))
			if res != nil {
				res.CleanupErr = cerr
			}
		}
	}()

	split, err := s.split(ctx, ns, in, source, col, runs)
	if err != nil {
		return nil, err
	}
	if len(split.runs) == 0 {
		log.Info("input has no data rows")
		return nil, ErrEmptyInput
	}

	w, err := out.open()
	if err != nil {
		return nil, err
	}
	rows, passes, err := s.merge(ctx, ns, split, out.name(), w, runs)
	if err == nil {
		err = out.commit()
	}
	if err != nil {
		if aerr := out.abort(); aerr != nil {
			log.Warn("failed to remove partial output", slog.String("output", out.name()), slog.Any("error", aerr))
		}
		return nil, err
	}
	rowsOutCounter.Add(ctx, rows)

	log.Info("sort complete",
		slog.String("output", out.name()),
		slog.Int64("rows", rows),
		slog.Int("runs", len(split.runs)),
		slog.Int("mergePasses", passes),
	)
	return &Result{
		Header:      split.header,
		KeyIndex:    split.keyIndex,
		Rows:        rows,
		Runs:        len(split.runs),
		MergePasses: passes,
		Bytes:       split.bytes,
	}, nil
}

// split reads the header and every data row, persisting sorted runs to ns
func (s *Sorter) split(ctx context.Context, ns tempfile.Namespace, in io.Reader, source string, col Column, runs *runSet) (*splitResult, error) {
	log := logctx.FromContext(ctx)
	rows := s.table.NewReader(bufio.NewReaderSize(in, s.config.FileBufferSize))

	header, err := rows.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, classifyReadError(err, source, 1)
	}
	keyIndex, err := col.Resolve(header)
	if err != nil {
		return nil, err
	}

	w := NewRunWriter(ns, s.runCodec, header, keyIndex, &s.config)
	defer func() {
		for _, r := range w.Runs() {
			runs.add(r.Name)
		}
	}()

	log.Info("splitting input into sorted runs",
		slog.String("column", col.String()),
		slog.Int("keyIndex", keyIndex),
		slog.Int64("bufferBytes", s.config.BufferBytes()),
		slog.String("order", s.config.Order.String()),
	)

	line := int64(1)
	var size int64
	for {
		rec, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, classifyReadError(err, source, line)
		}
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := w.Accept(ctx, rec); err != nil {
			var ce *CorruptionError
			if errors.As(err, &ce) && ce.Source == "" {
				ce.Source = source
			}
			return nil, err
		}
		size += rec.Size()
	}
	if err := w.Flush(ctx); err != nil {
		return nil, err
	}
	rowsInCounter.Add(ctx, line-1)

	split := &splitResult{
		header:   header,
		keyIndex: keyIndex,
		runs:     w.Runs(),
		rows:     line - 1,
		bytes:    size,
	}
	log.Info("split complete", slog.Int64("rows", split.rows), slog.Int("runs", len(split.runs)))
	return split, nil
}

// merge writes the header and then every run merged in order to w.
// It returns the number of data rows written and the number of merge passes.
func (s *Sorter) merge(ctx context.Context, ns tempfile.Namespace, split *splitResult, outName string, w io.Writer, runs *runSet) (n int64, passes int, err error) {
	infos, passes, err := s.cascade(ctx, ns, split, runs)
	if err != nil {
		return 0, passes, err
	}

	readers, err := s.openRuns(ns, infos, split.header)
	if err != nil {
		return 0, passes, err
	}
	defer func() {
		if cerr := closeRuns(readers); cerr != nil && err == nil {
			err = cerr
		}
	}()

	logctx.FromContext(ctx).Info("merging runs", slog.Int("runs", len(readers)), slog.String("output", outName))

	bw := bufio.NewWriterSize(w, s.config.FileBufferSize)
	rows := s.table.NewWriter(bw)
	if err := rows.Write(split.header); err != nil {
		return 0, passes, NewDiskError(err, "write output", outName)
	}
	n, err = Merge(ctx, readers, split.keyIndex, s.config.Order, func(rec Record) error {
		if err := rows.Write(rec); err != nil {
			return NewDiskError(err, "write output", outName)
		}
		return nil
	})
	if err != nil {
		return n, passes, err
	}
	passes++
	mergePassesCounter.Add(ctx, 1)

	if err := rows.Flush(); err != nil {
		return n, passes, NewDiskError(err, "flush output", outName)
	}
	if err := bw.Flush(); err != nil {
		return n, passes, NewDiskError(err, "flush output", outName)
	}
	if n != split.rows {
		return n, passes, &CorruptionError{
			Source: "runs",
			Reason: fmt.Sprintf("merged %d rows but read %d from the input", n, split.rows),
		}
	}
	return n, passes, nil
}

// cascade merges consecutive groups of MaxFanIn runs into new runs until no
// more than MaxFanIn remain. Every run, including one carried over alone,
// gets a fresh ID so that IDs keep following input order.
func (s *Sorter) cascade(ctx context.Context, ns tempfile.Namespace, split *splitResult, runs *runSet) ([]RunInfo, int, error) {
	log := logctx.FromContext(ctx)
	fanIn := s.config.MaxFanIn
	infos := split.runs
	passes := 0
	nextID := len(infos)

	for fanIn > 0 && len(infos) > fanIn {
		log.Info("merging intermediate runs", slog.Int("pass", passes+1), slog.Int("runs", len(infos)), slog.Int("fanIn", fanIn))
		merged := make([]RunInfo, 0, (len(infos)+fanIn-1)/fanIn)
		for group := range slices.Chunk(infos, fanIn) {
			info := group[0]
			if len(group) > 1 {
				var err error
				info, err = s.mergeToRun(ctx, ns, split, group, nextID, runs)
				if err != nil {
					return nil, passes, err
				}
				for _, consumed := range group {
					if err := runs.remove(consumed.Name); err != nil {
						log.Warn("failed to remove merged run", slog.String("run", consumed.Name), slog.Any("error", err))
					}
				}
			}
			info.ID = nextID
			nextID++
			merged = append(merged, info)
		}
		infos = merged
		passes++
		mergePassesCounter.Add(ctx, 1)
	}
	return infos, passes, nil
}

// mergeToRun merges group into a new run with the given ID
func (s *Sorter) mergeToRun(ctx context.Context, ns tempfile.Namespace, split *splitResult, group []RunInfo, id int, runs *runSet) (info RunInfo, err error) {
	readers, err := s.openRuns(ns, group, split.header)
	if err != nil {
		return info, err
	}
	defer func() {
		if cerr := closeRuns(readers); cerr != nil && err == nil {
			err = cerr
		}
	}()

	name := runName(s.config.RunFilenamePrefix, id, s.runCodec.Ext())
	sink, err := createRun(ns, s.runCodec, name, split.header, s.config.FileBufferSize)
	if err != nil {
		return info, err
	}
	runs.add(name)

	n, err := Merge(ctx, readers, split.keyIndex, s.config.Order, sink.write)
	if err == nil {
		err = sink.close()
	}
	if err != nil {
		sink.abort(ns)
		return info, err
	}
	runsCreatedCounter.Add(ctx, 1)

	info = RunInfo{ID: id, Name: name, Records: n}
	for _, g := range group {
		info.Bytes += g.Bytes
	}
	return info, nil
}

// openRuns opens a reader for every run, closing them all if one fails
func (s *Sorter) openRuns(ns tempfile.Namespace, infos []RunInfo, header Record) ([]*RunReader, error) {
	readers := make([]*RunReader, 0, len(infos))
	for _, info := range infos {
		r, err := OpenRun(ns, s.runCodec, info, header, s.config.FileBufferSize)
		if err != nil {
			_ = closeRuns(readers)
			return nil, err
		}
		readers = append(readers, r)
	}
	return readers, nil
}

func closeRuns(readers []*RunReader) error {
	var result *multierror.Error
	for _, r := range readers {
		if err := r.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// runSet tracks the runs currently present in a namespace so every exit
// path can remove them
type runSet struct {
	ns   tempfile.Namespace
	live []string
}

func (rs *runSet) add(names ...string) {
	rs.live = append(rs.live, names...)
}

// remove deletes one run. A run that fails to delete stays tracked.
func (rs *runSet) remove(name string) error {
	if err := removeRun(rs.ns, name); err != nil {
		return err
	}
	rs.live = slices.DeleteFunc(rs.live, func(n string) bool { return n == name })
	return nil
}

// removeAll deletes every tracked run, collecting all failures
func (rs *runSet) removeAll() error {
	var result *multierror.Error
	for _, name := range rs.live {
		if err := removeRun(rs.ns, name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	rs.live = nil
	return result.ErrorOrNil()
}

// removeRun deletes a run; one that is already gone is not an error
func removeRun(ns tempfile.Namespace, name string) error {
	if err := ns.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewDiskError(err, "remove run", name)
	}
	return nil
}

// output is the destination of the merged table. It is opened only once the
// input is known to have data rows.
type output interface {
	name() string
	open() (io.Writer, error)
	commit() error
	// abort discards whatever was written, where possible
	abort() error
}

// streamOutput writes to a caller-owned writer that cannot be rolled back
type streamOutput struct {
	w io.Writer
}

func (o *streamOutput) name() string             { return "output" }
func (o *streamOutput) open() (io.Writer, error) { return o.w, nil }
func (o *streamOutput) commit() error            { return nil }
func (o *streamOutput) abort() error             { return nil }

// fileOutput writes to a file that is removed again if the sort fails
type fileOutput struct {
	path string
	f    *os.File
}

func (o *fileOutput) name() string { return o.path }

func (o *fileOutput) open() (io.Writer, error) {
	f, err := os.Create(o.path)
	if err != nil {
		return nil, NewDiskError(err, "create output", o.path)
	}
	o.f = f
	return f, nil
}

func (o *fileOutput) commit() error {
	if err := o.f.Close(); err != nil {
		return NewDiskError(err, "close output", o.path)
	}
	return nil
}

func (o *fileOutput) abort() error {
	if o.f == nil {
		return nil
	}
	_ = o.f.Close()
	if err := os.Remove(o.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewDiskError(err, "remove output", o.path)
	}
	return nil
}
