package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/vk/rustc2wasm/internal/configuration"
)

// Output is the captured result of a finished process.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner executes a compiler invocation. A process that starts and exits,
// whatever its status, yields an Output and a nil error.
type Runner interface {
	Run(ctx context.Context, inv configuration.Invocation) (Output, error)
}

// ExecRunner runs invocations as host processes.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

var _ Runner = ExecRunner{}

func (r ExecRunner) Run(ctx context.Context, inv configuration.Invocation) (Output, error) {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s: %w", inv.Program, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}
