package csvsort

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/lanrat/csvsort/codec"
)

// Verify reads a comma separated table from in and checks that its data rows
// are sorted by col in order. It returns the number of data rows, or an
// *OrderError describing the first adjacent pair that is out of order.
func Verify(ctx context.Context, in io.Reader, col Column, order Order) (int64, error) {
	return verify(ctx, codec.NewCSV(','), in, col, order)
}

// Verify checks in the same way as the package level Verify, using the
// Sorter's delimiter and order.
func (s *Sorter) Verify(ctx context.Context, in io.Reader, col Column) (int64, error) {
	return verify(ctx, s.table, in, col, s.config.Order)
}

func verify(ctx context.Context, table codec.Codec, in io.Reader, col Column, order Order) (int64, error) {
	rows := table.NewReader(bufio.NewReader(in))
	header, err := rows.Read()
	if errors.Is(err, io.EOF) {
		return 0, ErrEmptyInput
	}
	if err != nil {
		return 0, classifyReadError(err, "input", 1)
	}
	keyIndex, err := col.Resolve(header)
	if err != nil {
		return 0, err
	}

	var prev Key
	line := int64(1)
	for {
		rec, err := rows.Read()
		if errors.Is(err, io.EOF) {
			return line - 1, nil
		}
		line++
		if err != nil {
			return line - 2, classifyReadError(err, "input", line)
		}
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return line - 2, err
			}
		}
		if len(rec) <= keyIndex {
			return line - 2, &CorruptionError{Source: "input", Line: line, Reason: "record is shorter than the sort column"}
		}
		key := ExtractKey(rec, keyIndex)
		if line > 2 && CompareKeys(prev, key, order) > 0 {
			return line - 2, &OrderError{Line: line, Prev: prev, Next: key, Order: order}
		}
		prev = key
	}
}
