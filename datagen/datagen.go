// Package datagen writes synthetic student tables for exercising the sorter.
// Rows are id_aluno,nome,email with the ids 1..N in shuffled order, so the
// output is never already sorted by id.
package datagen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/lanrat/csvsort/codec"
)

// Header is the first row of every generated table
var Header = codec.Record{"id_aluno", "nome", "email"}

const (
	nameLength = 8
	letters    = "abcdefghijklmnopqrstuvwxyz"
)

// Options controls the generated table
type Options struct {
	// Rows is the number of data rows, the ids are 1..Rows
	Rows int
	// TargetMB stops generation early once at least this many MiB were written; 0 disables it
	TargetMB float64
	// Seed makes the output reproducible; 0 picks a random seed
	Seed uint64
	// Domain is the email domain, "example.com" when empty
	Domain string
}

// Stats describes a generated table
type Stats struct {
	Rows  int64
	Bytes int64
}

// Write generates a table into w
func Write(w io.Writer, opts Options) (Stats, error) {
	var stats Stats
	if opts.Rows < 0 {
		return stats, fmt.Errorf("rows must not be negative, got %d", opts.Rows)
	}
	if opts.TargetMB < 0 {
		return stats, fmt.Errorf("target size must not be negative, got %g MiB", opts.TargetMB)
	}
	domain := opts.Domain
	if domain == "" {
		domain = "example.com"
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	target := int64(opts.TargetMB * 1024 * 1024)

	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	rows := codec.NewCSV(',').NewWriter(bw)
	if err := rows.Write(Header); err != nil {
		return stats, err
	}

	ids := rng.Perm(opts.Rows)
	for i, id := range ids {
		name := randomName(rng)
		idText := strconv.Itoa(id + 1)
		rec := codec.Record{idText, name, strings.ToLower(name) + idText + "@" + domain}
		if err := rows.Write(rec); err != nil {
			return stats, err
		}
		stats.Rows++

		// only check the size every so often, flushing is not free
		if target > 0 && (i+1)%1024 == 0 {
			if err := flush(rows, bw); err != nil {
				return stats, err
			}
			if cw.n >= target {
				break
			}
		}
	}
	if err := flush(rows, bw); err != nil {
		return stats, err
	}
	stats.Bytes = cw.n
	return stats, nil
}

// randomName returns a capitalized name of random lowercase letters
func randomName(rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(nameLength)
	for i := range nameLength {
		c := letters[rng.IntN(len(letters))]
		if i == 0 {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func flush(rows codec.Writer, bw *bufio.Writer) error {
	if err := rows.Flush(); err != nil {
		return err
	}
	return bw.Flush()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
