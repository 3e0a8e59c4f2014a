package configuration

import "fmt"

// Field identifies one of the required configuration fields.
type Field uint8

const (
	FieldOptimization Field = iota
	FieldDebugging
	FieldStackSize
	FieldSource
	FieldFilename

	fieldCount
)

// Fields lists every required field in canonical order.
var Fields = []Field{FieldOptimization, FieldDebugging, FieldStackSize, FieldSource, FieldFilename}

func (f Field) String() string {
	switch f {
	case FieldOptimization:
		return "optimization"
	case FieldDebugging:
		return "debugging"
	case FieldStackSize:
		return "stack_size"
	case FieldSource:
		return "source"
	case FieldFilename:
		return "filename"
	default:
		return fmt.Sprintf("field(%d)", uint8(f))
	}
}

func (f Field) bit() uint8 { return 1 << f }

const allFields = uint8(1)<<fieldCount - 1

// Builder accumulates configuration fields. Setters take and return Builder
// values, so a partially filled builder can be shared as a template without
// later calls leaking into it. The last value set for a field wins.
type Builder struct {
	cfg     Configuration
	present uint8
}

// NewBuilder returns a builder with no fields set.
func NewBuilder() Builder {
	return Builder{}
}

// Optimization sets the optimization level.
func (b Builder) Optimization(level OptimizationLevel) Builder {
	b.cfg.optimization = level
	return b.mark(FieldOptimization)
}

// Debugging sets the debug info policy.
func (b Builder) Debugging(d Debugging) Builder {
	b.cfg.debugging = d
	return b.mark(FieldDebugging)
}

// StackSize sets the stack size policy.
func (b Builder) StackSize(s StackSize) Builder {
	b.cfg.stackSize = s
	return b.mark(FieldStackSize)
}

// Source sets the source text.
func (b Builder) Source(src string) Builder {
	b.cfg.source = src
	return b.mark(FieldSource)
}

// Filename sets the source filename policy.
func (b Builder) Filename(f Filename) Builder {
	b.cfg.filename = f
	return b.mark(FieldFilename)
}

func (b Builder) mark(f Field) Builder {
	b.present |= f.bit()
	return b
}

// Has reports whether f has been set.
func (b Builder) Has(f Field) bool {
	return b.present&f.bit() != 0
}

// Missing returns the fields not yet set, in canonical order.
func (b Builder) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if !b.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Build finalizes the configuration. It fails with *MissingFieldError unless
// all five fields have been set, and with ErrEmptyFilename for a configured
// but empty filename.
func (b Builder) Build() (*Configuration, error) {
	if b.present != allFields {
		return nil, &MissingFieldError{Fields: b.Missing()}
	}
	if name, ok := b.cfg.filename.Name(); ok && name == "" {
		return nil, ErrEmptyFilename
	}
	cfg := b.cfg
	return &cfg, nil
}
