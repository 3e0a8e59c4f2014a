package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempFile is a file created at an exact name inside its own temporary
// directory. Close removes the whole directory.
type TempFile struct {
	Dir  string
	Path string
	File *os.File
}

// Close closes the file handle and removes the temporary directory.
func (t *TempFile) Close() error {
	var closeErr error
	if t.File != nil {
		if err := t.File.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			closeErr = err
		}
	}
	if t.Dir == "" {
		return closeErr
	}
	return errors.Join(closeErr, os.RemoveAll(t.Dir))
}

// FileSystem is the set of file operations a compilation needs.
type FileSystem interface {
	// CreateTempExact creates filename inside a fresh temporary directory.
	CreateTempExact(filename string) (*TempFile, error)
	// WriteAll writes data to f.
	WriteAll(f *os.File, data []byte) error
	// ReadFile reads the whole file at path.
	ReadFile(path string) ([]byte, error)
}

// TempFS implements FileSystem on the host's temporary directory.
type TempFS struct {
	// Root is the parent for temporary directories. Empty means os.TempDir.
	Root string
}

var _ FileSystem = TempFS{}

func (fs TempFS) CreateTempExact(filename string) (*TempFile, error) {
	if !filepath.IsLocal(filename) {
		return nil, fmt.Errorf("filename %q must be a local relative path", filename)
	}
	dir, err := os.MkdirTemp(fs.Root, "rustc2wasm-")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return &TempFile{Dir: dir, Path: path, File: f}, nil
}

func (TempFS) WriteAll(f *os.File, data []byte) error {
	_, err := f.Write(data)
	return err
}

func (TempFS) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
