package tempfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"sync"
)

// ErrInjected is the error returned by MockNamespace when a configured failure triggers.
var ErrInjected = errors.New("tempfile: injected failure")

// MockNamespace provides an in-memory implementation of the Namespace interface.
// It keeps every stream in a bytes.Buffer instead of writing to disk files,
// and can be told to fail Create, Write or Open calls to exercise error paths.
type MockNamespace struct {
	mu      sync.Mutex
	files   map[string]*bytes.Buffer
	created int
	opened  int
	written int64
	closed  bool

	failCreateAfter int
	failOpenAfter   int
	failWriteAfter  int64
}

var _ Namespace = (*MockNamespace)(nil)

// Mock creates a new empty in-memory Namespace with no failures configured.
func Mock() *MockNamespace {
	return &MockNamespace{
		files:           make(map[string]*bytes.Buffer),
		failCreateAfter: -1,
		failOpenAfter:   -1,
		failWriteAfter:  -1,
	}
}

// FailCreateAfter makes every Create call after the first n fail with ErrInjected.
func (m *MockNamespace) FailCreateAfter(n int) *MockNamespace {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCreateAfter = n
	return m
}

// FailOpenAfter makes every Open call after the first n fail with ErrInjected.
func (m *MockNamespace) FailOpenAfter(n int) *MockNamespace {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpenAfter = n
	return m
}

// FailWriteAfter makes writes fail with ErrInjected once n bytes in total have been written.
func (m *MockNamespace) FailWriteAfter(n int64) *MockNamespace {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWriteAfter = n
	return m
}

// Created returns how many streams have been created over the namespace lifetime.
func (m *MockNamespace) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// Path returns a descriptive name for the in-memory namespace
func (m *MockNamespace) Path() string {
	return fmt.Sprintf("mem://%p", m)
}

// Create registers a new empty stream; it is visible to List immediately.
func (m *MockNamespace) Create(name string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if m.failCreateAfter >= 0 && m.created >= m.failCreateAfter {
		return nil, &fs.PathError{Op: "create", Path: name, Err: ErrInjected}
	}
	m.created++
	buf := new(bytes.Buffer)
	m.files[name] = buf
	return &mockWriter{ns: m, name: name, buf: buf}, nil
}

// Open returns a reader over a snapshot of the stream contents.
func (m *MockNamespace) Open(name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	buf, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if m.failOpenAfter >= 0 && m.opened >= m.failOpenAfter {
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	m.opened++
	return io.NopCloser(bytes.NewReader(bytes.Clone(buf.Bytes()))), nil
}

// Remove deletes the stream
func (m *MockNamespace) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.files[name]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.files, name)
	return nil
}

// List returns the names of the streams currently held, sorted
func (m *MockNamespace) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	return slices.Sorted(maps.Keys(m.files)), nil
}

// Close releases all memory held by the namespace
func (m *MockNamespace) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.files = nil
	return nil
}

// mockWriter appends to a stream held by a MockNamespace
type mockWriter struct {
	ns     *MockNamespace
	name   string
	buf    *bytes.Buffer
	closed bool
}

func (w *mockWriter) Write(p []byte) (int, error) {
	w.ns.mu.Lock()
	defer w.ns.mu.Unlock()
	if w.closed {
		return 0, fs.ErrClosed
	}
	if w.ns.failWriteAfter >= 0 && w.ns.written+int64(len(p)) > w.ns.failWriteAfter {
		return 0, &fs.PathError{Op: "write", Path: w.name, Err: ErrInjected}
	}
	w.ns.written += int64(len(p))
	return w.buf.Write(p)
}

func (w *mockWriter) Close() error {
	w.ns.mu.Lock()
	defer w.ns.mu.Unlock()
	w.closed = true
	return nil
}
