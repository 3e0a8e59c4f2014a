// Package compiler runs rustc on a configuration.Configuration and returns
// the produced WebAssembly bytes.
//
// The host file system and process execution sit behind the FileSystem and
// Runner interfaces so tests can inject faults or fake compilers. Every temp
// directory created during a compilation is removed before Compile returns,
// on success and on failure alike.
package compiler
