package configuration

import "fmt"

const (
	// Program is the compiler binary invoked by default.
	Program = "rustc"

	targetFlag    = "--target=wasm32-unknown-unknown"
	crateTypeFlag = "--crate-type=cdylib"
	debugFlag     = "-g"
	outputFlag    = "-o"
)

// Configuration is a fully specified, read-only set of build options.
type Configuration struct {
	optimization OptimizationLevel
	debugging    Debugging
	stackSize    StackSize
	source       string
	filename     Filename
}

// Optimization returns the optimization level.
func (c *Configuration) Optimization() OptimizationLevel { return c.optimization }

// Debugging returns the debug info policy.
func (c *Configuration) Debugging() Debugging { return c.debugging }

// StackSize returns the stack size policy.
func (c *Configuration) StackSize() StackSize { return c.stackSize }

// Source returns the source text. It may not be valid Rust; only the
// compiler can tell.
func (c *Configuration) Source() string { return c.source }

// Filename returns the source filename policy.
func (c *Configuration) Filename() Filename { return c.filename }

// String implements fmt.Stringer. The source text is summarized by length.
func (c *Configuration) String() string {
	return fmt.Sprintf("opt=%s debug=%s stack=%s filename=%s source=%dB",
		c.optimization, c.debugging, c.stackSize, c.filename, len(c.source))
}

// Invocation describes a compiler process: the program to run and its
// ordered arguments.
type Invocation struct {
	Program string
	Args    []string
}

// WithProgram returns a copy of the invocation that runs program instead.
func (inv Invocation) WithProgram(program string) Invocation {
	if program == "" {
		return inv
	}
	inv.Args = append([]string(nil), inv.Args...)
	inv.Program = program
	return inv
}

// Invocation renders the configuration into rustc arguments compiling
// inputPath into outputPath. The argument order is fixed: input, opt level,
// debug, stack size, target, crate type, then the output pair.
func (c *Configuration) Invocation(inputPath, outputPath string) Invocation {
	args := make([]string, 0, 8)
	args = append(args, inputPath, c.optimization.flag())
	if c.debugging == DebugEnabled {
		args = append(args, debugFlag)
	}
	if n, ok := c.stackSize.Bytes(); ok {
		args = append(args, fmt.Sprintf("-Clink-args=-zstack-size=%d", n))
	}
	// cdylib allows omitting a main function.
	args = append(args, targetFlag, crateTypeFlag, outputFlag, outputPath)

	return Invocation{Program: Program, Args: args}
}
