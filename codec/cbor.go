package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is a binary Codec storing each record as a CBOR array of text strings.
// It needs no quoting or escaping, which makes it cheaper than CSV for
// intermediate runs that are only ever read back by the sorter.
type CBOR struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

var _ Codec = (*CBOR)(nil)

// NewCBOR creates a CBOR codec. Text that is not valid UTF-8 is passed
// through unchanged so that arbitrary CSV bytes survive a round trip.
func NewCBOR() (*CBOR, error) {
	encMode, err := cbor.EncOptions{
		Sort: cbor.SortNone,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	decMode, err := cbor.DecOptions{
		UTF8: cbor.UTF8DecodeInvalid,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR decoder: %w", err)
	}

	return &CBOR{encMode: encMode, decMode: decMode}, nil
}

// Name returns "cbor"
func (*CBOR) Name() string { return "cbor" }

// Ext returns ".cbor"
func (*CBOR) Ext() string { return ".cbor" }

// NewReader returns a Reader decoding one CBOR array per record
func (c *CBOR) NewReader(r io.Reader) Reader {
	return &cborReader{dec: c.decMode.NewDecoder(r)}
}

// NewWriter returns a Writer encoding one CBOR array per record.
// Records go straight to w; wrap w in a bufio.Writer for throughput.
func (c *CBOR) NewWriter(w io.Writer) Writer {
	return &cborWriter{enc: c.encMode.NewEncoder(w)}
}

type cborReader struct {
	dec *cbor.Decoder
}

func (r *cborReader) Read() (Record, error) {
	var rec []string
	if err := r.dec.Decode(&rec); err != nil {
		if isDecodeError(err) {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return nil, err
	}
	return Record(rec), nil
}

// isDecodeError reports whether err was caused by the encoded bytes rather
// than by the stream they were read from.
func isDecodeError(err error) bool {
	var (
		syntaxErr   *cbor.SyntaxError
		semanticErr *cbor.SemanticError
		typeErr     *cbor.UnmarshalTypeError
	)
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &semanticErr) ||
		errors.As(err, &typeErr)
}

type cborWriter struct {
	enc *cbor.Encoder
}

func (w *cborWriter) Write(rec Record) error {
	return w.enc.Encode([]string(rec))
}

func (w *cborWriter) Flush() error {
	return nil
}
