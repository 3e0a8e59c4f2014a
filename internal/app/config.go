package app

import (
	"errors"
	"fmt"

	"github.com/vk/rustc2wasm/internal/configuration"
)

// Mode selects what Run does.
type Mode int

const (
	// ModeBuildFile compiles the targets of one or more build files.
	ModeBuildFile Mode = iota
	// ModeSource compiles a single source file configured by flags.
	ModeSource
	// ModeVersion prints the compiler version.
	ModeVersion
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	BuildPaths []string // .hcl files or directories
	Targets    []string // subset of build file targets; empty means all
	OutDir     string

	SourcePath   string
	OutputPath   string
	Optimization int
	Debug        bool
	StackSize    *uint32 // nil leaves the stack size to the linker
	Filename     string

	PrintVersion bool
	Rustc        string

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates cfg and returns a copy with defaults applied.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PrintVersion {
		return withDefaults(cfg), nil
	}
	if len(cfg.BuildPaths) == 0 && cfg.SourcePath == "" {
		return nil, errors.New("either a build file or a source file is required")
	}
	if len(cfg.BuildPaths) > 0 && cfg.SourcePath != "" {
		return nil, errors.New("a build file and a source file cannot be combined")
	}
	if cfg.SourcePath == "" && cfg.OutputPath != "" {
		return nil, errors.New("-o applies to a single source file; build files name their own outputs")
	}
	if len(cfg.BuildPaths) > 0 && (cfg.Optimization != 0 || cfg.Debug || cfg.StackSize != nil || cfg.Filename != "") {
		return nil, errors.New("-O, -g, -stack-size and -filename apply to a single source file; set them in the build file")
	}
	if _, err := configuration.ParseOptimizationLevel(cfg.Optimization); err != nil {
		return nil, err
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("worker count must not be negative, got %d", cfg.WorkerCount)
	}
	return withDefaults(cfg), nil
}

func withDefaults(cfg Config) *Config {
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	if cfg.Rustc == "" {
		cfg.Rustc = configuration.Program
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	return &cfg
}

// Mode reports which operation the configuration asks for.
func (c *Config) Mode() Mode {
	switch {
	case c.PrintVersion:
		return ModeVersion
	case c.SourcePath != "":
		return ModeSource
	default:
		return ModeBuildFile
	}
}

func (m Mode) String() string {
	switch m {
	case ModeBuildFile:
		return "build-file"
	case ModeSource:
		return "source"
	case ModeVersion:
		return "version"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}
