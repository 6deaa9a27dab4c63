package eval

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"
)

// Host performs the effects of the effectful primitives. Evaluation never
// touches the process environment except through a Host.
type Host interface {
	// Print writes one line to standard output.
	Print(s string) error
	ReadFile(path string) (string, error)
	WriteFile(path, data string) error
	// Getenv returns "" for unset variables.
	Getenv(name string) string
	Now() time.Time
}

// OSHost is the real process environment.
type OSHost struct {
	// Stdout defaults to os.Stdout.
	Stdout io.Writer
}

func (h OSHost) Print(s string) error {
	w := h.Stdout
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, s)
	return err
}

func (OSHost) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func (OSHost) WriteFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0o644)
}

func (OSHost) Getenv(name string) string { return os.Getenv(name) }

func (OSHost) Now() time.Time { return time.Now() }

// MemHost is an in-memory host for tests and dry runs.
type MemHost struct {
	mu    sync.Mutex
	Out   []string
	Files map[string]string
	Env   map[string]string
	Clock time.Time
	// Fail makes every effect return this error.
	Fail error
}

func NewMemHost() *MemHost {
	return &MemHost{Files: map[string]string{}, Env: map[string]string{}, Clock: time.Unix(0, 0).UTC()}
}

func (h *MemHost) Print(s string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Fail != nil {
		return h.Fail
	}
	h.Out = append(h.Out, s)
	return nil
}

func (h *MemHost) ReadFile(path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Fail != nil {
		return "", h.Fail
	}
	data, ok := h.Files[path]
	if !ok {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (h *MemHost) WriteFile(path, data string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Fail != nil {
		return h.Fail
	}
	if h.Files == nil {
		h.Files = map[string]string{}
	}
	h.Files[path] = data
	return nil
}

func (h *MemHost) Getenv(name string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Env[name]
}

func (h *MemHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Clock
}
