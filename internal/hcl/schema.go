package hcl

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/rustc2wasm/internal/configuration"
)

// Attribute names shared by `defaults` and `target` blocks.
const (
	attrOptLevel  = "opt_level"
	attrDebug     = "debug"
	attrStackSize = "stack_size"
	attrFilename  = "filename"
	attrSource    = "source"
	attrOutput    = "output"
)

// configurationAttrs are applied to the builder in this order.
var configurationAttrs = []string{attrOptLevel, attrDebug, attrStackSize, attrFilename, attrSource}

// fieldAttrs maps configuration fields to the attributes that set them.
var fieldAttrs = map[configuration.Field]string{
	configuration.FieldOptimization: attrOptLevel,
	configuration.FieldDebugging:    attrDebug,
	configuration.FieldStackSize:    attrStackSize,
	configuration.FieldSource:       attrSource,
	configuration.FieldFilename:     attrFilename,
}

// missingAttrs names the attributes behind the fields of err, in the order
// they are applied.
func missingAttrs(err *configuration.MissingFieldError) []string {
	var names []string
	for _, f := range configuration.Fields {
		if err.Has(f) {
			names = append(names, fieldAttrs[f])
		}
	}
	return names
}

// fileRoot decodes the top-level blocks of a build file.
type fileRoot struct {
	Defaults []*defaultsBlock `hcl:"defaults,block"`
	Targets  []*targetBlock   `hcl:"target,block"`
}

// defaultsBlock holds attribute values applied to every target of the same
// file before the target's own attributes.
type defaultsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// targetBlock is a named `target "name" { ... }` block.
type targetBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}
