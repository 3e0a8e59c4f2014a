package compiler

import (
	"context"

	"github.com/vk/rustc2wasm/internal/configuration"
	"github.com/vk/rustc2wasm/internal/ctxlog"
)

const (
	// DefaultSourceFilename is used when the configuration leaves the
	// filename unspecified.
	DefaultSourceFilename = "rustc-to-wasm-source.rs"
	// OutputFilename is the name of the artifact rustc writes.
	OutputFilename = "rustc-to-wasm-out.wasm"
)

// Compiler turns configurations into WebAssembly modules.
type Compiler struct {
	fs      FileSystem
	runner  Runner
	program string
}

// Option customizes a Compiler.
type Option func(*Compiler)

// WithFileSystem replaces the host temp file system.
func WithFileSystem(fs FileSystem) Option {
	return func(c *Compiler) { c.fs = fs }
}

// WithRunner replaces the host process runner.
func WithRunner(r Runner) Option {
	return func(c *Compiler) { c.runner = r }
}

// WithProgram runs the given compiler binary instead of "rustc" from PATH.
func WithProgram(program string) Option {
	return func(c *Compiler) { c.program = program }
}

// New returns a Compiler using the host file system and processes unless
// overridden by opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		fs:      TempFS{},
		runner:  ExecRunner{},
		program: configuration.Program,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Program returns the compiler binary this Compiler invokes.
func (c *Compiler) Program() string {
	return c.program
}

// Compile writes the configured source to a temp file, runs the compiler on
// it and returns the artifact bytes. A non-zero exit yields
// *UnsuccessfulError; file and process failures yield *IOError.
func (c *Compiler) Compile(ctx context.Context, cfg *configuration.Configuration) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)

	name := DefaultSourceFilename
	if configured, ok := cfg.Filename().Name(); ok {
		name = configured
	}

	src, err := c.fs.CreateTempExact(name)
	if err != nil {
		return nil, &IOError{Op: "create source file", Err: err}
	}
	defer c.release(ctx, src)

	out, err := c.fs.CreateTempExact(OutputFilename)
	if err != nil {
		return nil, &IOError{Op: "create output file", Err: err}
	}
	defer c.release(ctx, out)

	if err := c.fs.WriteAll(src.File, []byte(cfg.Source())); err != nil {
		return nil, &IOError{Op: "write source file", Err: err}
	}

	inv := cfg.Invocation(src.Path, out.Path).WithProgram(c.program)
	logger.Debug("Invoking compiler.", "program", inv.Program, "args", inv.Args)

	res, err := c.runner.Run(ctx, inv)
	if err != nil {
		return nil, &IOError{Op: "run " + inv.Program, Err: err}
	}
	if !res.Success() {
		logger.Debug("Compiler reported failure.", "exit_code", res.ExitCode)
		return nil, &UnsuccessfulError{Output: res}
	}

	wasm, err := c.fs.ReadFile(out.Path)
	if err != nil {
		return nil, &IOError{Op: "read output file", Err: err}
	}
	logger.Debug("Compilation finished.", "bytes", len(wasm))
	return wasm, nil
}

func (c *Compiler) release(ctx context.Context, f *TempFile) {
	if err := f.Close(); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to remove temporary directory.", "dir", f.Dir, "error", err)
	}
}
