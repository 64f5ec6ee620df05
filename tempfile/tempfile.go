// Package tempfile manages the temporary storage used while sorting.
// A Namespace is a private container of named streams: a fresh directory on
// disk for real runs, or a map in memory for tests. Closing a Namespace removes
// everything that was written to it.
package tempfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
)

// namespacePrefix is the directory name prefix for namespaces created by New
const namespacePrefix = "csvsort-"

// DirNamespace is a Namespace backed by a directory that it created and owns.
type DirNamespace struct {
	dir    string
	closed bool
}

var _ Namespace = (*DirNamespace)(nil)

// New creates a uniquely named directory to hold temporary runs.
// dir selects the parent directory; when empty (or unusable) a disk backed
// temp directory is chosen with GetTempDir.
func New(dir string) (*DirNamespace, error) {
	base := GetTempDir(dir, true)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create temp base %s: %w", base, err)
	}
	path := filepath.Join(base, namespacePrefix+uuid.NewString())
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, fmt.Errorf("create namespace: %w", err)
	}
	return &DirNamespace{dir: path}, nil
}

// Path returns the namespace directory
func (n *DirNamespace) Path() string {
	return n.dir
}

func (n *DirNamespace) resolve(name string) (string, error) {
	if n.closed {
		return "", ErrClosed
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(n.dir, name), nil
}

// Create creates or truncates the named file for writing
func (n *DirNamespace) Create(name string) (io.WriteCloser, error) {
	p, err := n.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
}

// Open opens the named file for reading
func (n *DirNamespace) Open(name string) (io.ReadCloser, error) {
	p, err := n.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Remove deletes the named file
func (n *DirNamespace) Remove(name string) error {
	p, err := n.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// List returns the files currently in the namespace directory
func (n *DirNamespace) List() ([]string, error) {
	if n.closed {
		return nil, ErrClosed
	}
	entries, err := os.ReadDir(n.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// Close removes the namespace directory and everything in it.
// works like an abort, unrecoverable
func (n *DirNamespace) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	return os.RemoveAll(n.dir)
}
