package app

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/vk/rustc2wasm/internal/compiler"
	"github.com/vk/rustc2wasm/internal/configuration"
	"github.com/vk/rustc2wasm/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// scriptedRunner stands in for rustc. Sources containing "broken" fail to
// compile; everything else produces "wasm:" followed by the source.
type scriptedRunner struct {
	mu    sync.Mutex
	calls []configuration.Invocation
}

func (r *scriptedRunner) Run(_ context.Context, inv configuration.Invocation) (compiler.Output, error) {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	if len(inv.Args) == 1 && inv.Args[0] == "--version" {
		return compiler.Output{Stdout: []byte("rustc 1.78.0 (9b00956e5 2024-04-29)\n")}, nil
	}
	src, err := os.ReadFile(inv.Args[0])
	if err != nil {
		return compiler.Output{}, err
	}
	if strings.Contains(string(src), "broken") {
		return compiler.Output{ExitCode: 1, Stderr: []byte("error: expected item")}, nil
	}
	if err := os.WriteFile(inv.Args[len(inv.Args)-1], append([]byte("wasm:"), src...), 0o644); err != nil {
		return compiler.Output{}, err
	}
	return compiler.Output{}, nil
}

// SetupAppTest creates a new app instance wired to a scripted compiler.
func SetupAppTest(t *testing.T, cfg Config) (*App, *scriptedRunner, *bytes.Buffer, *SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	runner := &scriptedRunner{}
	out := &bytes.Buffer{}
	logBuffer := &SafeBuffer{}
	testApp := New(out, logBuffer, appConfig, hcl.NewLoader(),
		compiler.WithRunner(runner),
		compiler.WithFileSystem(compiler.TempFS{Root: t.TempDir()}),
	)

	t.Cleanup(func() {
		if os.Getenv("RUSTC2WASM_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, runner, out, logBuffer
}
