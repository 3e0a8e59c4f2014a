// Package configuration holds the immutable build options for a single
// rustc-to-wasm compilation and the staged Builder that produces them.
//
// A Configuration can only be obtained from Builder.Build, which refuses to
// finalize until every one of the five required fields has been supplied.
// Rendering a Configuration into a compiler invocation is a pure function and
// performs no I/O; running it is the job of the compiler package.
package configuration
