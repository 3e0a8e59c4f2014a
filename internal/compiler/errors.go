package compiler

import (
	"bytes"
	"fmt"
)

// IOError reports a failed file system operation or a process that could
// not be started.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UnsuccessfulError reports a compiler that exited with a non-zero status.
// The full captured output is kept for diagnostics.
type UnsuccessfulError struct {
	Output Output
}

func (e *UnsuccessfulError) Error() string {
	msg := fmt.Sprintf("compiler exited with status %d", e.Output.ExitCode)
	if stderr := bytes.TrimSpace(e.Output.Stderr); len(stderr) > 0 {
		msg += ":\n" + string(stderr)
	}
	return msg
}

// VersionErrorKind classifies version discovery failures.
type VersionErrorKind int

const (
	VersionIO VersionErrorKind = iota
	VersionInvocationNoSuccess
	VersionReadStdout
	VersionRegexNoMatch
	VersionParseFailed
)

func (k VersionErrorKind) String() string {
	switch k {
	case VersionIO:
		return "io error"
	case VersionInvocationNoSuccess:
		return "invocation no success"
	case VersionReadStdout:
		return "stdout is not valid utf-8"
	case VersionRegexNoMatch:
		return "regex no match"
	case VersionParseFailed:
		return "version parse failed"
	default:
		return fmt.Sprintf("version error(%d)", int(k))
	}
}

// VersionError reports why the compiler version could not be determined.
type VersionError struct {
	Kind VersionErrorKind
	// Output is set for VersionInvocationNoSuccess and VersionReadStdout.
	Output *Output
	// Text is the stdout that failed to match or parse.
	Text string
	Err  error
}

func (e *VersionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Text != "":
		return fmt.Sprintf("%s: %q", e.Kind, e.Text)
	case e.Output != nil:
		return fmt.Sprintf("%s: exit status %d", e.Kind, e.Output.ExitCode)
	default:
		return e.Kind.String()
	}
}

func (e *VersionError) Unwrap() error { return e.Err }
