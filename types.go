package csvsort

import (
	"fmt"
	"strings"

	"github.com/lanrat/csvsort/codec"
)

// Record is one row of the table being sorted
type Record = codec.Record

// Order is the direction of the sort
type Order int

const (
	// Ascending sorts smallest key first
	Ascending Order = iota
	// Descending sorts largest key first
	Descending
)

func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder parses "ascending"/"asc" or "descending"/"desc", case-insensitive.
// Any other value is rejected with a ConfigError.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	default:
		return Ascending, &ConfigError{Field: "Order", Value: s, Reason: `must be "ascending" or "descending"`}
	}
}

// RunInfo describes one temporary run created during the split phase
type RunInfo struct {
	// ID is the creation index of the run, used to break ties while merging
	ID int
	// Name is the stream name inside the namespace
	Name string
	// Records is the number of records in the run
	Records int64
	// Bytes is the estimated size of the records, as counted against the buffer
	Bytes int64
}
