package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSV is a Codec for delimited text with RFC 4180 quoting.
type CSV struct {
	comma rune
}

var _ Codec = CSV{}

// NewCSV returns a CSV codec using comma as the field delimiter.
func NewCSV(comma rune) CSV {
	if comma == 0 {
		comma = ','
	}
	return CSV{comma: comma}
}

// Name returns "csv"
func (CSV) Name() string { return "csv" }

// Ext returns ".csv"
func (CSV) Ext() string { return ".csv" }

// NewReader returns a Reader that does not enforce a field count; arity is
// checked by the caller against the header so it can report where it broke.
func (c CSV) NewReader(r io.Reader) Reader {
	cr := csv.NewReader(r)
	cr.Comma = c.comma
	cr.FieldsPerRecord = -1
	return &csvReader{r: cr}
}

// NewWriter returns a Writer producing LF terminated rows.
func (c CSV) NewWriter(w io.Writer) Writer {
	cw := csv.NewWriter(w)
	cw.Comma = c.comma
	return &csvWriter{w: cw, raw: w}
}

type csvReader struct {
	r *csv.Reader
}

func (r *csvReader) Read() (Record, error) {
	rec, err := r.r.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return nil, err
	}
	return Record(rec), nil
}

type csvWriter struct {
	w   *csv.Writer
	raw io.Writer
}

func (w *csvWriter) Write(rec Record) error {
	if len(rec) == 1 && rec[0] == "" {
		// encoding/csv writes a blank line here, which readers skip
		if err := w.Flush(); err != nil {
			return err
		}
		_, err := io.WriteString(w.raw, "\"\"\n")
		return err
	}
	return w.w.Write(rec)
}

func (w *csvWriter) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
