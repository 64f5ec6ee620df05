package csvsort

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		input string
		order Order
		rows  int64
		line  int64
	}{
		{"ascending", "id\n1\n2\n2\n10\nx\n", Ascending, 5, 0},
		{"descending", "id\ny\nx\n10\n2\n1\n", Descending, 5, 0},
		{"header only", "id\n", Ascending, 0, 0},
		{"out of order", "id\n1\n3\n2\n4\n", Ascending, 2, 4},
		{"text before number", "id\na\n1\n", Ascending, 1, 3},
		{"descending out of order", "id\n3\n1\n2\n", Descending, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Verify(ctx, strings.NewReader(tt.input), ColumnName("id"), tt.order)
			assert.Equal(t, tt.rows, n)
			if tt.line == 0 {
				assert.NoError(t, err)
				return
			}
			var orderErr *OrderError
			require.ErrorAs(t, err, &orderErr)
			assert.Equal(t, tt.line, orderErr.Line)
			assert.Equal(t, tt.order, orderErr.Order)
		})
	}
}

func TestVerifyErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Verify(ctx, strings.NewReader(""), ColumnIndex(0), Ascending)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Verify(ctx, strings.NewReader("id\n1\n"), ColumnName("name"), Ascending)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = Verify(ctx, strings.NewReader("id,name\n1,a\n2\n"), ColumnIndex(1), Ascending)
	var corrupt *CorruptionError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, int64(3), corrupt.Line)
}

func TestSorterVerifyUsesConfig(t *testing.T) {
	s := newTestSorter(t, &Config{BufferSizeMB: 1, Order: Descending, Delimiter: '\t'})
	n, err := s.Verify(context.Background(), strings.NewReader("id\tname\n2\tb\n1\ta\n"), ColumnName("id"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
