package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/rustc2wasm/internal/configuration"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func testConfig(t *testing.T, filename configuration.Filename) *configuration.Configuration {
	t.Helper()
	cfg, err := configuration.NewBuilder().
		Optimization(configuration.O0).
		Debugging(configuration.DebugDisabled).
		StackSize(configuration.UnspecifiedStackSize()).
		Source("#![no_std]").
		Filename(filename).
		Build()
	require.NoError(t, err)
	return cfg
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary directories must be removed")
}

func TestCompile_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	runner := &fakeRunner{artifact: wasmMagic}
	c := New(WithFileSystem(TempFS{Root: root}), WithRunner(runner))

	// --- Act ---
	wasm, err := c.Compile(context.Background(), testConfig(t, configuration.UnspecifiedFilename()))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, wasmMagic, wasm)
	require.Len(t, runner.calls, 1)

	inv := runner.calls[0]
	assert.Equal(t, "rustc", inv.Program)
	assert.Equal(t, DefaultSourceFilename, filepath.Base(inv.Args[0]))
	assert.Equal(t, OutputFilename, filepath.Base(inv.Args[len(inv.Args)-1]))
	assert.Equal(t, []string{"#![no_std]"}, runner.sources)
	assertEmptyDir(t, root)
}

func TestCompile_ConfiguredFilenameAndProgram(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	runner := &fakeRunner{artifact: wasmMagic}
	c := New(WithFileSystem(TempFS{Root: root}), WithRunner(runner), WithProgram("/opt/rustc"))

	_, err := c.Compile(context.Background(), testConfig(t, configuration.ConfiguredFilename("lib.rs")))
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "/opt/rustc", runner.calls[0].Program)
	assert.Equal(t, "lib.rs", filepath.Base(runner.calls[0].Args[0]))
	assert.Equal(t, "/opt/rustc", c.Program())
}

func TestCompile_Unsuccessful(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	runner := &fakeRunner{result: Output{ExitCode: 1, Stderr: []byte("error: expected item, found `no`\n")}}
	c := New(WithFileSystem(TempFS{Root: root}), WithRunner(runner))

	// --- Act ---
	wasm, err := c.Compile(context.Background(), testConfig(t, configuration.UnspecifiedFilename()))

	// --- Assert ---
	require.Error(t, err)
	assert.Nil(t, wasm)
	var unsuccessful *UnsuccessfulError
	require.ErrorAs(t, err, &unsuccessful)
	assert.Equal(t, 1, unsuccessful.Output.ExitCode)
	assert.Contains(t, err.Error(), "expected item")
	assertEmptyDir(t, root)
}

func TestCompile_RunnerFailure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	runner := &fakeRunner{err: errors.New("executable file not found in $PATH")}
	c := New(WithFileSystem(TempFS{Root: root}), WithRunner(runner))

	_, err := c.Compile(context.Background(), testConfig(t, configuration.UnspecifiedFilename()))

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "run rustc", ioErr.Op)
	assertEmptyDir(t, root)
}

func TestCompile_FileSystemBudget(t *testing.T) {
	t.Parallel()

	// Compile performs four file system operations: two creates, one write
	// and one read. Any budget below four must fail.
	const needed = 4

	for budget := 0; budget <= needed; budget++ {
		root := t.TempDir()
		fs := &budgetFS{TempFS: TempFS{Root: root}, budget: budget}
		c := New(WithFileSystem(fs), WithRunner(&fakeRunner{artifact: wasmMagic}))

		wasm, err := c.Compile(context.Background(), testConfig(t, configuration.UnspecifiedFilename()))

		if budget < needed {
			var ioErr *IOError
			require.ErrorAs(t, err, &ioErr, "budget %d", budget)
			assert.ErrorIs(t, err, errBudgetExhausted)
			assert.Nil(t, wasm)
		} else {
			require.NoError(t, err)
			assert.Equal(t, wasmMagic, wasm)
		}
		assertEmptyDir(t, root)
	}
}

func TestTempFS_RejectsEscapingFilename(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := TempFS{Root: root}.CreateTempExact("../evil.rs")
	require.Error(t, err)
	assertEmptyDir(t, root)
}

func TestTempFS_NestedFilename(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	tf, err := TempFS{Root: root}.CreateTempExact("src/lib.rs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tf.Dir, "src", "lib.rs"), tf.Path)

	require.NoError(t, tf.Close())
	assertEmptyDir(t, root)
}
