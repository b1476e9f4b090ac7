// Package transport moves files from the device under test to the local
// disk.
package transport

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Transport is a remote filesystem the screenshots are pulled from.
type Transport interface {
	// Exists reports whether remotePath exists. Any failure to find out
	// counts as "does not exist".
	Exists(ctx context.Context, remotePath string) bool

	// Pull copies one remote file to localPath, overwriting it.
	Pull(ctx context.Context, remotePath, localPath string) error

	// PullTree copies every file under remoteDir into localDir, keeping
	// relative paths.
	PullTree(ctx context.Context, remoteDir, localDir string) error

	// ExternalStorageRoot returns the device's external storage directory.
	ExternalStorageRoot(ctx context.Context) (string, error)
}

// TransportError reports a failed transfer.
type TransportError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%s %s failed: %s: %w", name, strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return out, fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Registry maps transport kinds to constructors.
type Registry struct {
	factories map[string]Factory
}

// Factory builds a Transport from Options.
type Factory func(opts Options) (Transport, error)

// Options carries everything any backend may need. Backends ignore the
// fields that do not apply to them.
type Options struct {
	// adb
	SDK      string
	Serial   string
	Emulator bool
	USB      bool
	Runner   Runner

	// local
	Root            string
	ExternalStorage string
}

// NewRegistry returns a registry with no backends.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the adb and local backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindADB, func(opts Options) (Transport, error) {
		return NewADB(opts), nil
	})
	r.Register(KindLocal, func(opts Options) (Transport, error) {
		return NewLocal(opts)
	})
	return r
}

// Transport kinds known to DefaultRegistry.
const (
	KindADB   = "adb"
	KindLocal = "local"
)

// Register adds a backend for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Open builds the transport registered for kind.
func (r *Registry) Open(kind string, opts Options) (Transport, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown transport '%s'; supported transports: %s", kind, r.supportedKinds())
	}
	return f(opts)
}

func (r *Registry) supportedKinds() string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		return "(none registered)"
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ", ")
}
