package compiler

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/vk/rustc2wasm/internal/configuration"
)

// fakeRunner pretends to be rustc: it records the invocation, captures the
// source it was given and writes artifact to the output path.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []configuration.Invocation
	sources  []string
	artifact []byte
	result   Output
	err      error
}

func (r *fakeRunner) Run(_ context.Context, inv configuration.Invocation) (Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, inv)
	if r.err != nil {
		return Output{}, r.err
	}
	if len(inv.Args) > 1 {
		if src, err := os.ReadFile(inv.Args[0]); err == nil {
			r.sources = append(r.sources, string(src))
		}
	}
	if r.result.Success() && len(inv.Args) >= 2 {
		if err := os.WriteFile(inv.Args[len(inv.Args)-1], r.artifact, 0o644); err != nil {
			return Output{}, err
		}
	}
	return r.result, nil
}

var errBudgetExhausted = errors.New("file system budget exhausted")

// budgetFS fails every operation once its budget of successful operations is
// used up.
type budgetFS struct {
	TempFS
	budget int
}

func (fs *budgetFS) spend() error {
	if fs.budget == 0 {
		return errBudgetExhausted
	}
	fs.budget--
	return nil
}

func (fs *budgetFS) CreateTempExact(filename string) (*TempFile, error) {
	if err := fs.spend(); err != nil {
		return nil, err
	}
	return fs.TempFS.CreateTempExact(filename)
}

func (fs *budgetFS) WriteAll(f *os.File, data []byte) error {
	if err := fs.spend(); err != nil {
		return err
	}
	return fs.TempFS.WriteAll(f, data)
}

func (fs *budgetFS) ReadFile(path string) ([]byte, error) {
	if err := fs.spend(); err != nil {
		return nil, err
	}
	return fs.TempFS.ReadFile(path)
}
