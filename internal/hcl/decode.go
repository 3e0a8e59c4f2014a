package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/rustc2wasm/internal/configuration"
)

// attributes evaluates every attribute of body, rejecting blocks and names
// outside allowed.
func attributes(body hcl.Body, evalCtx *hcl.EvalContext, allowed map[string]bool) (map[string]*evaluated, hcl.Diagnostics) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	out := make(map[string]*evaluated, len(attrs))
	for name, attr := range attrs {
		if !allowed[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported argument",
				Detail:   fmt.Sprintf("An argument named %q is not expected here.", name),
				Subject:  attr.NameRange.Ptr(),
			})
			continue
		}
		val, valDiags := attr.Expr.Value(evalCtx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		out[name] = &evaluated{attr: attr, val: val}
	}
	return out, diags
}

// evaluated is an attribute together with its value.
type evaluated struct {
	attr *hcl.Attribute
	val  cty.Value
}

func (e *evaluated) diag(format string, args ...any) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Invalid value for %q", e.attr.Name),
		Detail:   fmt.Sprintf(format, args...),
		Subject:  e.attr.Expr.Range().Ptr(),
	}
}

// decode converts the value to the Go type behind target.
func (e *evaluated) decode(ty cty.Type, target any) *hcl.Diagnostic {
	if e.val.IsNull() {
		return e.diag("The value must not be null.")
	}
	if !e.val.IsWhollyKnown() {
		return e.diag("The value must be known.")
	}
	converted, err := convert.Convert(e.val, ty)
	if err != nil {
		return e.diag("Cannot convert %s to %s: %s.", e.val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return e.diag("%s.", err)
	}
	return nil
}

// apply sets the builder field named by the attribute.
func (e *evaluated) apply(b configuration.Builder) (configuration.Builder, *hcl.Diagnostic) {
	switch e.attr.Name {
	case attrOptLevel:
		var n int
		if d := e.decode(cty.Number, &n); d != nil {
			return b, d
		}
		level, err := configuration.ParseOptimizationLevel(n)
		if err != nil {
			return b, e.diag("%s.", err)
		}
		return b.Optimization(level), nil

	case attrDebug:
		var enabled bool
		if d := e.decode(cty.Bool, &enabled); d != nil {
			return b, d
		}
		return b.Debugging(configuration.Debugging(enabled)), nil

	case attrStackSize:
		if e.val.IsNull() {
			return b.StackSize(configuration.UnspecifiedStackSize()), nil
		}
		var size uint32
		if d := e.decode(cty.Number, &size); d != nil {
			return b, d
		}
		return b.StackSize(configuration.ConfiguredStackSize(size)), nil

	case attrFilename:
		if e.val.IsNull() {
			return b.Filename(configuration.UnspecifiedFilename()), nil
		}
		var name string
		if d := e.decode(cty.String, &name); d != nil {
			return b, d
		}
		if name == "" {
			return b, e.diag("The filename must not be empty; use null for the default name.")
		}
		return b.Filename(configuration.ConfiguredFilename(name)), nil

	case attrSource:
		var src string
		if d := e.decode(cty.String, &src); d != nil {
			return b, d
		}
		return b.Source(src), nil
	}
	return b, nil
}
