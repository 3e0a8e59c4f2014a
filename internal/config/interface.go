package config

import "context"

// Loader is the interface for a format-specific build file loader.
type Loader interface {
	// Load reads every build file found under paths and translates them
	// into a single Model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
