package tempfile

import (
	"errors"
	"io"
)

var (
	// ErrClosed is returned by a Namespace that has already been torn down.
	ErrClosed = errors.New("tempfile: namespace closed")
	// ErrInvalidName is returned for names that are empty or contain a path separator.
	ErrInvalidName = errors.New("tempfile: invalid name")
)

// Namespace is an isolated container of named temporary byte streams.
// Each sort invocation owns exactly one Namespace, so concurrent invocations
// never see each other's files. Implementations handle the underlying storage
// mechanism (a directory on disk or memory).
type Namespace interface {
	// Close removes every stream in the namespace and the container itself.
	// It is idempotent; after Close all other methods return ErrClosed.
	io.Closer

	// Create creates (or truncates) the named stream for sequential writing.
	Create(name string) (io.WriteCloser, error)

	// Open opens the named stream for sequential reading from the start.
	Open(name string) (io.ReadCloser, error)

	// Remove deletes the named stream.
	Remove(name string) error

	// List returns the names of the streams currently in the namespace, sorted.
	List() ([]string, error)

	// Path describes where the namespace lives, for logging.
	Path() string
}
