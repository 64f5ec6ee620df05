package csvsort

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		field string
		want  Key
	}{
		{"42", Key{Kind: KeyInt, Int: 42}},
		{"-7", Key{Kind: KeyInt, Int: -7}},
		{" 13 ", Key{Kind: KeyInt, Int: 13}},
		{"9223372036854775807", Key{Kind: KeyInt, Int: math.MaxInt64}},
		{"9223372036854775808", Key{Kind: KeyFloat, Float: 9223372036854775808}},
		{"2.5", Key{Kind: KeyFloat, Float: 2.5}},
		{"1e3", Key{Kind: KeyFloat, Float: 1000}},
		{"-Inf", Key{Kind: KeyFloat, Float: math.Inf(-1)}},
		{"-1e400", Key{Kind: KeyFloat, Float: math.Inf(-1)}},
		{"1e400", Key{Kind: KeyFloat, Float: math.Inf(1)}},
		{"NaN", Key{Kind: KeyText, Text: "NaN"}},
		{"", Key{Kind: KeyText, Text: ""}},
		{"  ", Key{Kind: KeyText, Text: "  "}},
		{"abc", Key{Kind: KeyText, Text: "abc"}},
		{" x ", Key{Kind: KeyText, Text: " x "}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, parseKey(tt.field))
		})
	}
}

func TestExtractKey(t *testing.T) {
	rec := Record{"3", "carol", "1.5"}
	assert.Equal(t, Key{Kind: KeyInt, Int: 3}, ExtractKey(rec, 0))
	assert.Equal(t, Key{Kind: KeyText, Text: "carol"}, ExtractKey(rec, 1))
	assert.Equal(t, Key{Kind: KeyFloat, Float: 1.5}, ExtractKey(rec, 2))
}

func TestCompareKeys(t *testing.T) {
	k := parseKey
	tests := []struct {
		name string
		a, b Key
		want int
	}{
		{"int less", k("1"), k("2"), -1},
		{"int equal", k("5"), k(" 5"), 0},
		{"int numeric not lexical", k("9"), k("10"), -1},
		{"float less", k("1.5"), k("2.5"), -1},
		{"int float equal", k("2"), k("2.0"), 0},
		{"int below float", k("2"), k("2.5"), -1},
		{"float below int", k("1.5"), k("2"), -1},
		{"negative fraction", k("-2"), k("-2.5"), 1},
		{"large int exact", k("9007199254740993"), k("9007199254740992.0"), 1},
		{"max int below 2^63", k("9223372036854775807"), k("9223372036854775808"), -1},
		{"min int equals -2^63", k("-9223372036854775808"), k("-9223372036854775808.0"), 0},
		{"inf", k("100"), k("Inf"), -1},
		{"neg inf", k("-Inf"), k("-100"), -1},
		{"overflow is numeric", k("-1e400"), k("-100"), -1},
		{"text lexical", k("apple"), k("banana"), -1},
		{"text bytewise", k("Z"), k("a"), -1},
		{"numeric before text", k("1000"), k("abc"), -1},
		{"text after numeric", k("abc"), k("1.5"), 1},
		{"nan is text", k("NaN"), k("1"), 1},
		{"empty is text", k(""), k("0"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(CompareKeys(tt.a, tt.b, Ascending)), "ascending")
			assert.Equal(t, -tt.want, sign(CompareKeys(tt.a, tt.b, Descending)), "descending")
			assert.Equal(t, -tt.want, sign(CompareKeys(tt.b, tt.a, Ascending)), "antisymmetric")
		})
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "42", parseKey("42").String())
	assert.Equal(t, "2.5", parseKey("2.5").String())
	assert.Equal(t, `"abc"`, parseKey("abc").String())
}

func TestColumnResolve(t *testing.T) {
	header := []string{"id", "name", "id"}

	i, err := ColumnName("name").Resolve(header)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = ColumnName("id").Resolve(header)
	require.NoError(t, err)
	assert.Equal(t, 0, i, "first matching column wins")

	i, err = ColumnIndex(2).Resolve(header)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = ColumnName("email").Resolve(header)
	assert.ErrorIs(t, err, ErrColumnNotFound)
	var colErr *ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, header, colErr.Header)

	_, err = ColumnIndex(3).Resolve(header)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
	_, err = ColumnIndex(-1).Resolve(header)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)

	assert.Equal(t, `"name"`, ColumnName("name").String())
	assert.Equal(t, "#2", ColumnIndex(2).String())
}

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}
