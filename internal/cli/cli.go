package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/vk/rustc2wasm/internal/app"
	"github.com/vk/rustc2wasm/internal/hcl"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("rustc2wasm", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
rustc2wasm - compiles Rust sources into WebAssembly modules with rustc.

Usage:
  rustc2wasm [options] SOURCE.rs
  rustc2wasm [options] -f BUILD.hcl|DIR [-f ...]
  rustc2wasm -version

Arguments:
  SOURCE.rs
    A single Rust source file, configured by -O, -g, -stack-size and -filename.
  BUILD.hcl
    A build file declaring one or more targets. A positional argument ending
    in .hcl is treated like -f.

Options:
`)
		flagSet.PrintDefaults()
	}

	var buildPaths stringList
	var stackSize optionalUint32
	flagSet.Var(&buildPaths, "f", "Build file or directory of build files (repeatable).")
	flagSet.Var(&buildPaths, "file", "Build file or directory of build files (repeatable).")
	targetsFlag := flagSet.String("target", "", "Comma separated list of build file targets to compile. Empty compiles all.")
	outDirFlag := flagSet.String("out-dir", ".", "Directory for compiled modules.")
	outputFlag := flagSet.String("o", "", "Output path for a single source file.")
	optFlag := flagSet.Int("O", 0, "Optimization level for a single source file (0-3).")
	debugFlag := flagSet.Bool("g", false, "Emit debug info for a single source file.")
	flagSet.Var(&stackSize, "stack-size", "Stack size in bytes for a single source file. Unset leaves the linker default.")
	filenameFlag := flagSet.String("filename", "", "Name of the source file handed to rustc. Empty uses the default.")
	rustcFlag := flagSet.String("rustc", "rustc", "Path to the rustc binary.")
	versionFlag := flagSet.Bool("version", false, "Print the rustc version and exit.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", runtime.NumCPU(), "Number of concurrent compilations for build files.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var sourcePath string
	for _, arg := range flagSet.Args() {
		if strings.HasSuffix(arg, hcl.Extension) {
			buildPaths = append(buildPaths, arg)
			continue
		}
		if sourcePath != "" {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("only one source file may be given, got %q and %q", sourcePath, arg)}
		}
		sourcePath = arg
	}
	slog.Debug("Inputs determined.", "build_paths", []string(buildPaths), "source", sourcePath)

	if !*versionFlag && len(buildPaths) == 0 && sourcePath == "" {
		slog.Debug("No input provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if len(buildPaths) > 0 {
		var sourceOnly []string
		flagSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "O", "g", "stack-size", "filename":
				sourceOnly = append(sourceOnly, "-"+f.Name)
			}
		})
		if len(sourceOnly) > 0 {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("%s only apply to a single source file; set them in the build file", strings.Join(sourceOnly, ", "))}
		}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		BuildPaths:   buildPaths,
		Targets:      splitList(*targetsFlag),
		OutDir:       *outDirFlag,
		SourcePath:   sourcePath,
		OutputPath:   *outputFlag,
		Optimization: *optFlag,
		Debug:        *debugFlag,
		StackSize:    stackSize.value,
		Filename:     *filenameFlag,
		PrintVersion: *versionFlag,
		Rustc:        *rustcFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		WorkerCount:  *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
