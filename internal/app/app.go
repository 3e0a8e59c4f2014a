package app

import (
	"io"
	"log/slog"

	"github.com/vk/rustc2wasm/internal/compiler"
	"github.com/vk/rustc2wasm/internal/config"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	compiler *compiler.Compiler
}

// New is the constructor for the main application. Results are printed to
// outW and logs go to logW. Extra compiler options are applied after the
// configured rustc path, so tests can swap the runner or file system.
func New(outW, logW io.Writer, cfg *Config, loader config.Loader, opts ...compiler.Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	opts = append([]compiler.Option{compiler.WithProgram(cfg.Rustc)}, opts...)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		compiler: compiler.New(opts...),
	}
}

// Compiler returns the application's compiler. This is primarily for testing.
func (a *App) Compiler() *compiler.Compiler {
	return a.compiler
}
