package configuration

import (
	"fmt"
	"strconv"
)

// OptimizationLevel selects the rustc optimization level. The only values
// are O0 through O3; the zero value is O0.
type OptimizationLevel struct {
	n uint8
}

var (
	O0 = OptimizationLevel{0}
	O1 = OptimizationLevel{1}
	O2 = OptimizationLevel{2}
	O3 = OptimizationLevel{3}
)

// OptimizationLevels lists every level in ascending order.
var OptimizationLevels = []OptimizationLevel{O0, O1, O2, O3}

// ParseOptimizationLevel maps 0..3 to the matching level.
func ParseOptimizationLevel(n int) (OptimizationLevel, error) {
	if n < 0 || n > 3 {
		return O0, fmt.Errorf("optimization level must be between 0 and 3, got %d", n)
	}
	return OptimizationLevel{uint8(n)}, nil
}

// Level returns the numeric level, 0 through 3.
func (l OptimizationLevel) Level() int {
	return int(l.n)
}

func (l OptimizationLevel) String() string {
	return "O" + strconv.Itoa(l.Level())
}

// flag renders the level as a rustc codegen option.
func (l OptimizationLevel) flag() string {
	return "-Copt-level=" + strconv.Itoa(l.Level())
}

// Debugging controls whether debug info is emitted.
type Debugging bool

const (
	DebugEnabled  Debugging = true
	DebugDisabled Debugging = false
)

func (d Debugging) String() string {
	if d {
		return "enabled"
	}
	return "disabled"
}

// StackSize is either unspecified (the linker default applies) or a
// configured byte count.
type StackSize struct {
	bytes      uint32
	configured bool
}

// UnspecifiedStackSize leaves the stack size to the linker.
func UnspecifiedStackSize() StackSize {
	return StackSize{}
}

// ConfiguredStackSize requests an explicit stack size in bytes. Zero is
// accepted here and left for the linker to judge.
func ConfiguredStackSize(bytes uint32) StackSize {
	return StackSize{bytes: bytes, configured: true}
}

// Bytes returns the configured size and whether one was set.
func (s StackSize) Bytes() (uint32, bool) {
	return s.bytes, s.configured
}

func (s StackSize) String() string {
	if !s.configured {
		return "unspecified"
	}
	return strconv.FormatUint(uint64(s.bytes), 10)
}

// Filename names the source file handed to rustc. When unspecified the
// compiler package falls back to its default name.
type Filename struct {
	name       string
	configured bool
}

// UnspecifiedFilename uses the default source filename.
func UnspecifiedFilename() Filename {
	return Filename{}
}

// ConfiguredFilename uses name for the source file. The name must not be
// empty; Builder.Build rejects a configured empty name with ErrEmptyFilename.
func ConfiguredFilename(name string) Filename {
	return Filename{name: name, configured: true}
}

// Name returns the configured name and whether one was set.
func (f Filename) Name() (string, bool) {
	return f.name, f.configured
}

func (f Filename) String() string {
	if !f.configured {
		return "unspecified"
	}
	return f.name
}
