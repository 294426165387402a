package generate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nerrad567/ets2ha/internal/commissioning/model"
)

// Format names accepted by Lookup.
const (
	FormatHomeAssistant = "homeass"
	FormatLinknx        = "linknx"
)

// Logger is the logging interface used by generators.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Artifact is a generator's in-memory output.
type Artifact interface {
	// Render serialises the artifact to its target text syntax.
	Render() ([]byte, error)
}

// Generator produces an Artifact from a model.
type Generator interface {
	// Format returns the registered format name.
	Format() string

	// Generate reads m and builds the artifact.
	Generate(m *model.Model) (Artifact, Statistics, error)
}

// Statistics summarises one generation run.
type Statistics struct {
	Orphans           int // addresses not referenced by any object
	Emitted           int // records or descriptors written
	SkippedObjects    int // objects with no supported domain
	SkippedReferences int // references with no property mapping
	Conflicts         int // references dropped because the property was already set
}

var generators = map[string]func(Logger) Generator{
	FormatHomeAssistant: func(l Logger) Generator { return NewHomeAssistant(l) },
	FormatLinknx:        func(l Logger) Generator { return NewLinknx(l) },
}

// Lookup returns the generator registered for format. A nil logger discards
// diagnostics.
//
// Returns ErrUnknownFormat if format is not registered.
func Lookup(format string, logger Logger) (Generator, error) {
	ctor, ok := generators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownFormat, format, Formats())
	}
	return ctor(logger), nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	return slices.Sorted(maps.Keys(generators))
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func orNoop(logger Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return logger
}
