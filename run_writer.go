package csvsort

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/lanrat/csvsort/codec"
	"github.com/lanrat/csvsort/logctx"
	"github.com/lanrat/csvsort/tempfile"
)

// keyedRecord is a buffered record with its key extracted once
type keyedRecord struct {
	key Key
	rec Record
}

// RunWriter accumulates records in memory and persists them as sorted runs.
// A run is cut whenever the estimated size of the buffered records reaches
// the configured threshold, and once more by Flush at the end of the input.
type RunWriter struct {
	ns             tempfile.Namespace
	codec          codec.Codec
	header         Record
	keyIndex       int
	order          Order
	threshold      int64
	prefix         string
	fileBufferSize int

	buf      []keyedRecord
	size     int64
	accepted int64
	runs     []RunInfo
}

// NewRunWriter creates a RunWriter persisting runs of header-prefixed records
// into ns with runCodec. keyIndex must already be resolved against header.
func NewRunWriter(ns tempfile.Namespace, runCodec codec.Codec, header Record, keyIndex int, config *Config) *RunWriter {
	config = mergeConfig(config)
	return &RunWriter{
		ns:             ns,
		codec:          runCodec,
		header:         header,
		keyIndex:       keyIndex,
		order:          config.Order,
		threshold:      config.BufferBytes(),
		prefix:         config.RunFilenamePrefix,
		fileBufferSize: config.FileBufferSize,
	}
}

// Accept buffers rec and persists the buffer as a new run once it reaches the threshold.
// A record whose arity differs from the header fails with a CorruptionError.
func (w *RunWriter) Accept(ctx context.Context, rec Record) error {
	w.accepted++
	if len(rec) != len(w.header) {
		return &CorruptionError{
			Line:   w.accepted + 1,
			Reason: fmt.Sprintf("record has %d fields, header has %d", len(rec), len(w.header)),
		}
	}
	w.buf = append(w.buf, keyedRecord{key: ExtractKey(rec, w.keyIndex), rec: rec})
	w.size += rec.Size()
	if w.size >= w.threshold {
		return w.spill(ctx)
	}
	return nil
}

// Flush persists any buffered records as a final run. It creates nothing
// when the buffer is empty.
func (w *RunWriter) Flush(ctx context.Context) error {
	if len(w.buf) == 0 {
		return nil
	}
	return w.spill(ctx)
}

// Runs returns the runs persisted so far, in creation order
func (w *RunWriter) Runs() []RunInfo {
	return slices.Clone(w.runs)
}

// spill sorts the buffer and writes it out as the next run
func (w *RunWriter) spill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// stable, so equal keys keep their input order inside the run
	slices.SortStableFunc(w.buf, func(a, b keyedRecord) int {
		return CompareKeys(a.key, b.key, w.order)
	})

	id := len(w.runs)
	name := runName(w.prefix, id, w.codec.Ext())
	sink, err := createRun(w.ns, w.codec, name, w.header, w.fileBufferSize)
	if err != nil {
		return err
	}
	for _, kr := range w.buf {
		if err := sink.write(kr.rec); err != nil {
			sink.abort(w.ns)
			return err
		}
	}
	if err := sink.close(); err != nil {
		sink.abort(w.ns)
		return err
	}

	info := RunInfo{ID: id, Name: name, Records: int64(len(w.buf)), Bytes: w.size}
	w.runs = append(w.runs, info)
	runsCreatedCounter.Add(ctx, 1)
	logctx.FromContext(ctx).Debug("persisted run",
		slog.Int("run", info.ID),
		slog.String("name", info.Name),
		slog.Int64("records", info.Records),
		slog.Int64("bytes", info.Bytes),
	)

	clear(w.buf) // drop record references before reuse
	w.buf = w.buf[:0]
	w.size = 0
	return nil
}

func runName(prefix string, id int, ext string) string {
	return fmt.Sprintf("%s%d%s", prefix, id, ext)
}

// runSink writes a single run: the header followed by records
type runSink struct {
	name string
	wc   io.WriteCloser
	bw   *bufio.Writer
	rows codec.Writer
}

// createRun creates the named run in ns and writes its header
func createRun(ns tempfile.Namespace, c codec.Codec, name string, header Record, bufSize int) (*runSink, error) {
	wc, err := ns.Create(name)
	if err != nil {
		return nil, NewDiskError(err, "create run", name)
	}
	bw := bufio.NewWriterSize(wc, bufSize)
	s := &runSink{name: name, wc: wc, bw: bw, rows: c.NewWriter(bw)}
	if err := s.write(header); err != nil {
		s.abort(ns)
		return nil, err
	}
	return s, nil
}

func (s *runSink) write(rec Record) error {
	if err := s.rows.Write(rec); err != nil {
		return NewDiskError(err, "write run", s.name)
	}
	return nil
}

// close flushes and closes the run; on error the caller must abort
func (s *runSink) close() error {
	if err := s.rows.Flush(); err != nil {
		return NewDiskError(err, "flush run", s.name)
	}
	if err := s.bw.Flush(); err != nil {
		return NewDiskError(err, "flush run", s.name)
	}
	if err := s.wc.Close(); err != nil {
		return NewDiskError(err, "close run", s.name)
	}
	return nil
}

// abort closes the handle and removes the partially written run.
// Errors are ignored: the namespace teardown removes anything left behind.
func (s *runSink) abort(ns tempfile.Namespace) {
	_ = s.wc.Close()
	_ = ns.Remove(s.name)
}
