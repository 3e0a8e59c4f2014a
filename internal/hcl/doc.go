// Package hcl provides the HCL implementation of config.Loader. It parses
// build files, evaluates attribute expressions and feeds the results through
// configuration.Builder, so a target that omits a required field is reported
// with the builder's own missing-field error.
package hcl
