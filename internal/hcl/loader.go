package hcl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/rustc2wasm/internal/config"
	"github.com/vk/rustc2wasm/internal/configuration"
	"github.com/vk/rustc2wasm/internal/ctxlog"
	"github.com/vk/rustc2wasm/internal/fsutil"
)

// Extension is the suffix of build files picked up from directories.
const Extension = ".hcl"

var (
	defaultsAttrs = map[string]bool{
		attrOptLevel: true, attrDebug: true, attrStackSize: true, attrFilename: true, attrSource: true,
	}
	targetAttrs = map[string]bool{
		attrOptLevel: true, attrDebug: true, attrStackSize: true, attrFilename: true, attrSource: true, attrOutput: true,
	}
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL build file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every build file under paths and returns their targets in
// file order. Target names must be unique across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(Extension, paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s build files found", Extension)
	}
	logger.Debug("Discovered build files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	origins := make(map[string]string)

	for _, file := range files {
		targets, err := l.loadFile(ctx, parser, file)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if prev, dup := origins[t.Name]; dup {
				return nil, fmt.Errorf("target %q in %s is already declared in %s", t.Name, file, prev)
			}
			origins[t.Name] = file
			model.Targets = append(model.Targets, t)
		}
	}

	logger.Debug("HCL loading complete.", "targets", len(model.Targets))
	return model, nil
}

func (l *Loader) loadFile(ctx context.Context, parser *hclparse.Parser, path string) ([]*config.Target, error) {
	logger := ctxlog.FromContext(ctx).With("file", path)

	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse build file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode build file %s: %w", path, diags)
	}
	if len(root.Defaults) > 1 {
		return nil, fmt.Errorf("build file %s: at most one defaults block is allowed, found %d", path, len(root.Defaults))
	}

	evalCtx := newEvalContext(filepath.Dir(path))

	base := configuration.NewBuilder()
	if len(root.Defaults) == 1 {
		attrs, diags := attributes(root.Defaults[0].Body, evalCtx, defaultsAttrs)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode defaults in %s: %w", path, diags)
		}
		var err error
		if base, err = applyAll(base, attrs); err != nil {
			return nil, fmt.Errorf("failed to decode defaults in %s: %w", path, err)
		}
		logger.Debug("Applied defaults block.", "attributes", len(attrs), "unset", base.Missing())
	}

	seen := make(map[string]bool, len(root.Targets))
	targets := make([]*config.Target, 0, len(root.Targets))
	for _, block := range root.Targets {
		if block.Name == "" {
			return nil, fmt.Errorf("build file %s: target name must not be empty", path)
		}
		if seen[block.Name] {
			return nil, fmt.Errorf("build file %s: duplicate target %q", path, block.Name)
		}
		seen[block.Name] = true

		t, err := translateTarget(base, block, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("target %q in %s: %w", block.Name, path, err)
		}
		t.Origin = path
		logger.Debug("Target loaded.", "target", t.Name, "configuration", t.Configuration.String())
		targets = append(targets, t)
	}
	return targets, nil
}

// translateTarget layers the target's attributes over the defaults builder
// and finalizes the configuration.
func translateTarget(base configuration.Builder, block *targetBlock, evalCtx *hcl.EvalContext) (*config.Target, error) {
	attrs, diags := attributes(block.Body, evalCtx, targetAttrs)
	if diags.HasErrors() {
		return nil, diags
	}

	b, err := applyAll(base, attrs)
	if err != nil {
		return nil, err
	}
	cfg, err := b.Build()
	if err != nil {
		var missing *configuration.MissingFieldError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("set %s in the target or a defaults block: %w", strings.Join(missingAttrs(missing), ", "), err)
		}
		return nil, err
	}

	output := block.Name + ".wasm"
	if out, ok := attrs[attrOutput]; ok {
		if d := out.decode(cty.String, &output); d != nil {
			return nil, hcl.Diagnostics{d}
		}
		if output == "" {
			return nil, hcl.Diagnostics{out.diag("The output path must not be empty.")}
		}
	}

	return &config.Target{
		Name:          block.Name,
		Output:        output,
		Configuration: cfg,
	}, nil
}

// applyAll applies the configuration attributes in a fixed order so that
// diagnostics are reported deterministically.
func applyAll(b configuration.Builder, attrs map[string]*evaluated) (configuration.Builder, error) {
	var diags hcl.Diagnostics
	for _, name := range configurationAttrs {
		e, ok := attrs[name]
		if !ok {
			continue
		}
		var d *hcl.Diagnostic
		if b, d = e.apply(b); d != nil {
			diags = append(diags, d)
		}
	}
	if diags.HasErrors() {
		return b, diags
	}
	return b, nil
}
