package codec_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanrat/csvsort/codec"
)

func allCodecs(t *testing.T) []codec.Codec {
	t.Helper()
	cb, err := codec.NewCBOR()
	require.NoError(t, err)
	return []codec.Codec{codec.NewCSV(','), codec.NewCSV(';'), cb}
}

func TestCodecRoundTrip(t *testing.T) {
	records := []codec.Record{
		{"id", "name", "note"},
		{"1", "alice", "plain"},
		{"2", "bob, jr", `says "hi"`},
		{"3", "multi\nline", ""},
		{"4", "", " padded "},
		{"5", "ünïcødé", "\xff\xfe"},
	}

	for _, c := range allCodecs(t) {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			w := c.NewWriter(&buf)
			for _, rec := range records {
				require.NoError(t, w.Write(rec))
			}
			require.NoError(t, w.Flush())

			r := c.NewReader(&buf)
			for i, want := range records {
				got, err := r.Read()
				require.NoError(t, err, "record %d", i)
				assert.Equal(t, want, got, "record %d", i)
			}
			_, err := r.Read()
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestCodecSingleEmptyField(t *testing.T) {
	for _, c := range allCodecs(t) {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			w := c.NewWriter(&buf)
			require.NoError(t, w.Write(codec.Record{"value"}))
			require.NoError(t, w.Write(codec.Record{""}))
			require.NoError(t, w.Write(codec.Record{"x"}))
			require.NoError(t, w.Flush())

			r := c.NewReader(&buf)
			for _, want := range []codec.Record{{"value"}, {""}, {"x"}} {
				got, err := r.Read()
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestCSVOutputFormat(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewCSV(',').NewWriter(&buf)
	require.NoError(t, w.Write(codec.Record{"id", "name"}))
	require.NoError(t, w.Write(codec.Record{"1", "a,b"}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "id,name\n1,\"a,b\"\n", buf.String())
}

func TestCSVReaderVariableArity(t *testing.T) {
	r := codec.NewCSV(',').NewReader(strings.NewReader("a,b,c\n1,2\n"))
	rec, err := r.Read()
	require.NoError(t, err)
	assert.Len(t, rec, 3)
	rec, err = r.Read()
	require.NoError(t, err)
	assert.Len(t, rec, 2)
}

func TestCBORTruncated(t *testing.T) {
	c, err := codec.NewCBOR()
	require.NoError(t, err)

	var buf bytes.Buffer
	w := c.NewWriter(&buf)
	require.NoError(t, w.Write(codec.Record{"id", "name"}))
	require.NoError(t, w.Write(codec.Record{"1", "alice"}))
	data := buf.Bytes()[:buf.Len()-2]

	r := c.NewReader(bytes.NewReader(data))
	_, err = r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF), "truncated stream must not look like a clean end: %v", err)
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

func TestCSVMalformed(t *testing.T) {
	r := codec.NewCSV(',').NewReader(strings.NewReader("id,name\n1,\"a\n"))
	_, err := r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

func TestCBORMalformed(t *testing.T) {
	c, err := codec.NewCBOR()
	require.NoError(t, err)
	// an unsigned integer where an array of text strings is expected
	_, err = c.NewReader(bytes.NewReader([]byte{0x01})).Read()
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

// brokenStream fails every read
type brokenStream struct{}

func (brokenStream) Read([]byte) (int, error) {
	return 0, errors.New("input/output error")
}

func TestReaderPassesStreamErrors(t *testing.T) {
	for _, c := range allCodecs(t) {
		t.Run(c.Name(), func(t *testing.T) {
			_, err := c.NewReader(brokenStream{}).Read()
			require.Error(t, err)
			assert.NotErrorIs(t, err, codec.ErrMalformed)
			assert.NotErrorIs(t, err, io.EOF)
		})
	}
}

func TestLookup(t *testing.T) {
	for _, tt := range []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "", want: "csv"},
		{name: "CSV", want: "csv"},
		{name: "cbor", want: "cbor"},
		{name: "parquet", wantErr: true},
	} {
		c, err := codec.Lookup(tt.name)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.Name())
	}
}

func TestRecordSize(t *testing.T) {
	assert.Equal(t, int64(0), codec.Record{}.Size())
	assert.Equal(t, int64(9), codec.Record{"abc", "", "defghi"}.Size())
}
