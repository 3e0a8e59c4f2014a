package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// newEvalContext returns the evaluation context for a build file located in
// baseDir.
func newEvalContext(baseDir string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"file":   fileFunc(baseDir),
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
			"max":    stdlib.MaxFunc,
			"min":    stdlib.MinFunc,
		},
	}
}

// fileFunc reads a UTF-8 text file. Relative paths resolve against baseDir.
func fileFunc(baseDir string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			path := args[0].AsString()
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return cty.NilVal, fmt.Errorf("failed to read file: %w", err)
			}
			if !utf8.Valid(data) {
				return cty.NilVal, fmt.Errorf("file %s is not valid UTF-8", path)
			}
			return cty.StringVal(string(data)), nil
		},
	})
}
