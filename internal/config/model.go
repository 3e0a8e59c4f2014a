package config

import (
	"fmt"
	"strings"

	"github.com/vk/rustc2wasm/internal/configuration"
)

// Model is the unified representation of every target found in the loaded
// build files, in declaration order.
type Model struct {
	Targets []*Target
}

// Target is one named compilation.
type Target struct {
	Name string
	// Output is the artifact path, relative to the output directory unless
	// absolute.
	Output string
	// Origin is the build file that declared the target.
	Origin        string
	Configuration *configuration.Configuration
}

// Lookup returns the target with the given name.
func (m *Model) Lookup(name string) (*Target, bool) {
	for _, t := range m.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Select returns the named targets in the order given. An empty list selects
// every target.
func (m *Model) Select(names []string) ([]*Target, error) {
	if len(names) == 0 {
		return m.Targets, nil
	}
	selected := make([]*Target, 0, len(names))
	var unknown []string
	for _, name := range names {
		t, ok := m.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, t)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown target(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}
