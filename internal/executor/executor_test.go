package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/rustc2wasm/internal/config"
	"github.com/vk/rustc2wasm/internal/configuration"
)

// fakeCompiler returns the source text as the artifact, failing for sources
// listed in fail. It tracks the peak number of concurrent calls.
type fakeCompiler struct {
	fail    map[string]bool
	delay   time.Duration
	running atomic.Int32
	peak    atomic.Int32
	calls   atomic.Int32
}

func (c *fakeCompiler) Compile(_ context.Context, cfg *configuration.Configuration) ([]byte, error) {
	c.calls.Add(1)
	n := c.running.Add(1)
	defer c.running.Add(-1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(c.delay)
	if c.fail[cfg.Source()] {
		return nil, errors.New("compile error in " + cfg.Source())
	}
	return []byte(cfg.Source()), nil
}

func newTargets(t *testing.T, names ...string) []*config.Target {
	t.Helper()
	targets := make([]*config.Target, 0, len(names))
	for _, name := range names {
		cfg, err := configuration.NewBuilder().
			Optimization(configuration.O1).
			Debugging(configuration.DebugDisabled).
			StackSize(configuration.UnspecifiedStackSize()).
			Filename(configuration.UnspecifiedFilename()).
			Source(name).
			Build()
		require.NoError(t, err)
		targets = append(targets, &config.Target{Name: name, Output: name + ".wasm", Configuration: cfg})
	}
	return targets
}

func TestRun_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	compiler := &fakeCompiler{delay: 10 * time.Millisecond}
	targets := newTargets(t, "a", "b", "c", "d", "e", "f", "g", "h")

	// --- Act ---
	results := New(compiler, 3).Run(context.Background(), targets)

	// --- Assert ---
	require.Len(t, results, len(targets))
	seen := make(map[uuid.UUID]bool)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Same(t, targets[i], r.Target)
		assert.Equal(t, targets[i].Name, string(r.Artifact))
		assert.NotEqual(t, uuid.Nil, r.JobID)
		assert.False(t, seen[r.JobID], "job IDs must be unique")
		seen[r.JobID] = true
	}
	assert.LessOrEqual(t, compiler.peak.Load(), int32(3))
	assert.Equal(t, int32(len(targets)), compiler.calls.Load())
	assert.NoError(t, Err(results))
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	compiler := &fakeCompiler{fail: map[string]bool{"b": true, "d": true}}
	results := New(compiler, 2).Run(context.Background(), newTargets(t, "a", "b", "c", "d"))

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Error(t, results[3].Err)

	err := Err(results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `target "b"`)
	assert.Contains(t, err.Error(), `target "d"`)
	assert.NotContains(t, err.Error(), `target "a"`)
}

func TestRun_CancelledContextSkipsTargets(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	compiler := &fakeCompiler{}
	results := New(compiler, 4).Run(ctx, newTargets(t, "a", "b"))

	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Zero(t, compiler.calls.Load())
}

func TestRun_NoTargets(t *testing.T) {
	t.Parallel()

	results := New(&fakeCompiler{}, 0).Run(context.Background(), nil)
	assert.Empty(t, results)
	assert.NoError(t, Err(results))
}
