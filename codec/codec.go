// Package codec reads and writes streams of tabular records.
// A Codec knows how one record is laid out on the wire (quoting, escaping,
// framing); the sorter only ever deals with whole records.
package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed is wrapped by Reader errors caused by bytes that do not decode
// as a record. Any other non-EOF error comes from the underlying io.Reader.
var ErrMalformed = errors.New("malformed record")

// Record is one row of a table: an ordered list of field values.
type Record []string

// Size returns the estimated in-memory size of the record, the sum of the
// lengths of its fields.
func (r Record) Size() int64 {
	var n int64
	for _, f := range r {
		n += int64(len(f))
	}
	return n
}

// Reader reads records one at a time.
type Reader interface {
	// Read returns the next record, or io.EOF once the stream is exhausted.
	// Decode failures wrap ErrMalformed.
	Read() (Record, error)
}

// Writer writes records one at a time.
type Writer interface {
	Write(Record) error
	// Flush writes any buffered data to the underlying io.Writer.
	Flush() error
}

// Codec creates record readers and writers over byte streams.
type Codec interface {
	// Name identifies the codec in configuration ("csv", "cbor").
	Name() string
	// Ext is the file extension used for streams in this format, with the dot.
	Ext() string
	NewReader(r io.Reader) Reader
	NewWriter(w io.Writer) Writer
}

// Lookup returns the codec registered under name. The CSV codec uses the
// default comma delimiter.
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "csv":
		return NewCSV(','), nil
	case "cbor":
		return NewCBOR()
	default:
		return nil, fmt.Errorf("unknown record format %q", name)
	}
}
