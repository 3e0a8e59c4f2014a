// Package config defines the format-agnostic build model: a list of named
// targets, each carrying a finalized configuration.Configuration and the
// path its artifact should be written to.
//
// Concrete file formats, such as HCL, implement the Loader interface in
// separate packages.
package config
