package csvsort

import (
	"slices"
	"strconv"
)

// Column selects the sort column, either by header name or by zero-based index.
type Column struct {
	name   string
	index  int
	byName bool
}

// ColumnName selects the first column whose header equals name
func ColumnName(name string) Column {
	return Column{name: name, byName: true}
}

// ColumnIndex selects a column by its zero-based position
func ColumnIndex(index int) Column {
	return Column{index: index}
}

func (c Column) String() string {
	if c.byName {
		return strconv.Quote(c.name)
	}
	return "#" + strconv.Itoa(c.index)
}

// Resolve returns the index of the column in header. A missing name fails with
// ErrColumnNotFound, an index outside the header with ErrColumnOutOfRange, both
// wrapped in a ColumnError.
func (c Column) Resolve(header []string) (int, error) {
	if c.byName {
		i := slices.Index(header, c.name)
		if i < 0 {
			return 0, &ColumnError{Column: c, Header: header, Err: ErrColumnNotFound}
		}
		return i, nil
	}
	if c.index < 0 || c.index >= len(header) {
		return 0, &ColumnError{Column: c, Header: header, Err: ErrColumnOutOfRange}
	}
	return c.index, nil
}
