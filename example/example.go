package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lanrat/csvsort"
	"github.com/lanrat/csvsort/datagen"
)

var count = int(1e6) // 1M

func main() {
	dir, err := os.MkdirTemp("", "csvsort-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// create an input file with unsorted data
	input := filepath.Join(dir, "alunos.csv")
	f, err := os.Create(input)
	if err != nil {
		log.Fatal(err)
	}
	stats, err := datagen.Write(f, datagen.Options{Rows: count})
	if err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("generated %d rows (%d bytes)\n", stats.Rows, stats.Bytes)

	// sort it with a buffer much smaller than the file
	sorter, err := csvsort.New(&csvsort.Config{BufferSizeMB: 4})
	if err != nil {
		log.Fatal(err)
	}
	res, err := sorter.SortFile(context.Background(), input, csvsort.ColumnName("id_aluno"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("sorted %d rows from %d runs into %s\n", res.Rows, res.Runs, res.Output)

	out, err := os.Open(res.Output)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if _, err := csvsort.Verify(context.Background(), out, csvsort.ColumnName("id_aluno"), csvsort.Ascending); err != nil {
		log.Fatal(err)
	}
	fmt.Println("output verified")
}
