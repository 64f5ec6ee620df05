package csvsort

import (
	"cmp"
	"errors"
	"math"
	"strconv"
	"strings"
)

// KeyKind tags the variant held by a Key
type KeyKind uint8

const (
	// KeyInt is a field that parses as a base 10 int64
	KeyInt KeyKind = iota
	// KeyFloat is a field that parses as a float64 but not as an int64
	KeyFloat
	// KeyText is any other field, compared byte-wise
	KeyText
)

// Key is the typed sort key extracted from one field of a record.
// Numeric keys (KeyInt, KeyFloat) always sort before KeyText keys.
type Key struct {
	Kind  KeyKind
	Int   int64
	Float float64
	Text  string
}

// ExtractKey derives the sort key of rec from the field at index.
// The field is tried as an integer, then as a float, and otherwise kept as
// text. Surrounding whitespace is ignored for the numeric attempts only.
// NaN is kept as text so numeric keys stay totally ordered.
func ExtractKey(rec Record, index int) Key {
	return parseKey(rec[index])
}

func parseKey(field string) Key {
	trimmed := strings.TrimSpace(field)
	if trimmed != "" {
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return Key{Kind: KeyInt, Int: i}
		}
		// out of range values parse to ±Inf with ErrRange
		f, err := strconv.ParseFloat(trimmed, 64)
		if (err == nil || errors.Is(err, strconv.ErrRange)) && !math.IsNaN(f) {
			return Key{Kind: KeyFloat, Float: f}
		}
	}
	return Key{Kind: KeyText, Text: field}
}

func (k Key) String() string {
	switch k.Kind {
	case KeyInt:
		return strconv.FormatInt(k.Int, 10)
	case KeyFloat:
		return strconv.FormatFloat(k.Float, 'g', -1, 64)
	default:
		return strconv.Quote(k.Text)
	}
}

// CompareKeys returns a negative number when a sorts before b in the given
// order, a positive number when it sorts after, and zero when they are equal.
// The same function orders records inside a run and across runs.
func CompareKeys(a, b Key, order Order) int {
	c := compareAscending(a, b)
	if order == Descending {
		return -c
	}
	return c
}

func compareAscending(a, b Key) int {
	aText, bText := a.Kind == KeyText, b.Kind == KeyText
	switch {
	case aText && bText:
		return strings.Compare(a.Text, b.Text)
	case aText:
		return 1
	case bText:
		return -1
	}

	switch {
	case a.Kind == KeyInt && b.Kind == KeyInt:
		return cmp.Compare(a.Int, b.Int)
	case a.Kind == KeyFloat && b.Kind == KeyFloat:
		return cmp.Compare(a.Float, b.Float)
	case a.Kind == KeyInt:
		return compareIntFloat(a.Int, b.Float)
	default:
		return -compareIntFloat(b.Int, a.Float)
	}
}

// twoTo63 is 2^63, the first float64 above math.MaxInt64
const twoTo63 = float64(1 << 63)

// compareIntFloat compares an int64 with a non-NaN float64 exactly,
// without rounding i to the nearest float64.
func compareIntFloat(i int64, f float64) int {
	if f >= twoTo63 {
		return -1
	}
	if f < -twoTo63 {
		return 1
	}
	t := math.Trunc(f)
	if ti := int64(t); i != ti {
		return cmp.Compare(i, ti)
	}
	// same integer part; f is larger if it has a positive fraction
	return cmp.Compare(0, f-t)
}
