package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/rustc2wasm/internal/configuration"
	"github.com/vk/rustc2wasm/internal/ctxlog"
	"github.com/vk/rustc2wasm/internal/executor"
)

// Run executes the operation selected by the configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", a.config.Mode())

	var err error
	switch a.config.Mode() {
	case ModeVersion:
		err = a.printVersion(ctx)
	case ModeSource:
		err = a.compileSource(ctx)
	default:
		err = a.compileBuildFiles(ctx)
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) printVersion(ctx context.Context) error {
	v, err := a.compiler.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine compiler version: %w", err)
	}
	fmt.Fprintf(a.outW, "%s %s\n", filepath.Base(a.compiler.Program()), v)
	return nil
}

// sourceConfiguration builds the configuration for single-file mode from
// the command-line options.
func (a *App) sourceConfiguration(source string) (*configuration.Configuration, error) {
	level, err := configuration.ParseOptimizationLevel(a.config.Optimization)
	if err != nil {
		return nil, err
	}

	stack := configuration.UnspecifiedStackSize()
	if a.config.StackSize != nil {
		stack = configuration.ConfiguredStackSize(*a.config.StackSize)
	}

	filename := configuration.UnspecifiedFilename()
	if a.config.Filename != "" {
		filename = configuration.ConfiguredFilename(a.config.Filename)
	}

	return configuration.NewBuilder().
		Source(source).
		Optimization(level).
		Debugging(configuration.Debugging(a.config.Debug)).
		StackSize(stack).
		Filename(filename).
		Build()
}

func (a *App) compileSource(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	src, err := os.ReadFile(a.config.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	cfg, err := a.sourceConfiguration(string(src))
	if err != nil {
		return err
	}
	logger.Debug("Compiling source file.", "path", a.config.SourcePath, "configuration", cfg.String())

	wasm, err := a.compiler.Compile(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", a.config.SourcePath, err)
	}

	out := a.config.OutputPath
	if out == "" {
		base := filepath.Base(a.config.SourcePath)
		out = filepath.Join(a.config.OutDir, strings.TrimSuffix(base, filepath.Ext(base))+".wasm")
	}
	if err := writeArtifact(out, wasm); err != nil {
		return err
	}
	logger.Info("Module written.", "path", out, "bytes", len(wasm))
	return nil
}

func (a *App) compileBuildFiles(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	model, err := a.loader.Load(ctx, a.config.BuildPaths...)
	if err != nil {
		return fmt.Errorf("failed to load build files: %w", err)
	}
	targets, err := model.Select(a.config.Targets)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		logger.Warn("No targets found, nothing to compile.")
		return nil
	}

	logger.Info("Starting compilation.", "targets", len(targets), "workers", a.config.WorkerCount)
	results := executor.New(a.compiler, a.config.WorkerCount).Run(ctx, targets)

	failed := 0
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			failed++
			continue
		}
		out := r.Target.Output
		if !filepath.IsAbs(out) {
			out = filepath.Join(a.config.OutDir, out)
		}
		if err := writeArtifact(out, r.Artifact); err != nil {
			r.Err = err
			failed++
			continue
		}
		logger.Info("Module written.", "target", r.Target.Name, "path", out, "bytes", len(r.Artifact))
	}

	logger.Info("Compilation finished.", "succeeded", len(results)-failed, "failed", failed)
	if err := executor.Err(results); err != nil {
		return fmt.Errorf("%d of %d targets failed: %w", failed, len(results), err)
	}
	return nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write module: %w", err)
	}
	return nil
}
