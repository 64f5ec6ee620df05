package csvsort

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/lanrat/csvsort/codec"
	"github.com/lanrat/csvsort/tempfile"
)

// RunReader is a cursor over the records of one persisted run.
// The current record is available through Peek until Advance is called.
type RunReader struct {
	info   RunInfo
	rc     io.ReadCloser
	rows   codec.Reader
	arity  int
	line   int64
	next   Record
	done   bool
	closed bool
}

// OpenRun opens the run described by info and positions the cursor on its
// first record. The run's header must equal header, and every record must
// have as many fields as the header, or reading fails with a CorruptionError.
func OpenRun(ns tempfile.Namespace, runCodec codec.Codec, info RunInfo, header Record, bufSize int) (*RunReader, error) {
	if bufSize <= 0 {
		bufSize = DefaultConfig().FileBufferSize
	}
	rc, err := ns.Open(info.Name)
	if err != nil {
		return nil, NewDiskError(err, "open run", info.Name)
	}
	r := &RunReader{
		info:  info,
		rc:    rc,
		rows:  runCodec.NewReader(bufio.NewReaderSize(rc, bufSize)),
		arity: len(header),
	}

	got, err := r.rows.Read()
	switch {
	case errors.Is(err, io.EOF):
		err = &CorruptionError{Source: info.Name, Line: 1, Reason: "missing header"}
	case err != nil:
		err = classifyReadError(err, info.Name, 1)
	case !slices.Equal(got, header):
		err = &CorruptionError{Source: info.Name, Line: 1, Reason: fmt.Sprintf("header %q does not match %q", got, header)}
	}
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	r.line = 1

	if err := r.Advance(); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return r, nil
}

// ID returns the run's identity, used to break ties between equal keys
func (r *RunReader) ID() int {
	return r.info.ID
}

// Info returns the run this reader was opened on
func (r *RunReader) Info() RunInfo {
	return r.info
}

// Peek returns the current record. ok is false once the run is exhausted.
func (r *RunReader) Peek() (rec Record, ok bool) {
	return r.next, !r.done
}

// Advance moves the cursor to the next record. Advancing an exhausted run is a no-op.
func (r *RunReader) Advance() error {
	if r.done {
		return nil
	}
	rec, err := r.rows.Read()
	if errors.Is(err, io.EOF) {
		r.done = true
		r.next = nil
		return nil
	}
	r.line++
	if err != nil {
		return classifyReadError(err, r.info.Name, r.line)
	}
	if len(rec) != r.arity {
		return &CorruptionError{
			Source: r.info.Name,
			Line:   r.line,
			Reason: fmt.Sprintf("record has %d fields, header has %d", len(rec), r.arity),
		}
	}
	r.next = rec
	return nil
}

// Close releases the underlying stream. It does not remove the run.
func (r *RunReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.rc.Close(); err != nil {
		return NewDiskError(err, "close run", r.info.Name)
	}
	return nil
}

// classifyReadError maps an error returned by a codec reader to a
// CorruptionError when the bytes could not be decoded, and to a DiskError
// for every other failure of the underlying stream.
func classifyReadError(err error, source string, line int64) error {
	if errors.Is(err, codec.ErrMalformed) {
		return &CorruptionError{Source: source, Line: line, Reason: "malformed record", Err: err}
	}
	return NewDiskError(err, "read", source)
}
