package pipeline

import (
	"fmt"

	"github.com/nerrad567/ets2ha/internal/commissioning/etsimport"
	"github.com/nerrad567/ets2ha/internal/commissioning/generate"
	"github.com/nerrad567/ets2ha/internal/commissioning/model"
	"github.com/nerrad567/ets2ha/internal/commissioning/override"
)

// Logger is the logging interface used by the pipeline and passed on to the
// builder and generator.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options selects what a run produces.
type Options struct {
	// Format is a registered generator name, see generate.Formats.
	Format string

	// AddressStyle overrides the project's declared style when non-empty.
	AddressStyle string

	// Hook runs once between model construction and generation. May be nil.
	Hook override.Hook

	// Logger receives diagnostics. May be nil.
	Logger Logger
}

// Statistics combines the build and generation counters.
type Statistics struct {
	Model    model.Statistics
	Generate generate.Statistics
}

// Result is the outcome of a successful run.
type Result struct {
	Model      *model.Model
	Artifact   generate.Artifact
	Statistics Statistics
}

// Run converts project according to opts.
//
// The generator is resolved before any work is done so an unknown format
// fails fast. The hook, if any, completes before generation starts.
func Run(project *etsimport.Project, opts Options) (*Result, error) {
	var genLogger generate.Logger
	if opts.Logger != nil {
		genLogger = opts.Logger
	}
	gen, err := generate.Lookup(opts.Format, genLogger)
	if err != nil {
		return nil, err
	}

	builder := model.NewBuilder()
	if opts.Logger != nil {
		builder.SetLogger(opts.Logger)
	}
	m, err := builder.Build(project, opts.AddressStyle)
	if err != nil {
		return nil, err
	}

	if opts.Hook != nil {
		if err := opts.Hook.Apply(m); err != nil {
			return nil, fmt.Errorf("applying overrides: %w", err)
		}
	}

	artifact, genStats, err := gen.Generate(m)
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", gen.Format(), err)
	}

	return &Result{
		Model:    m,
		Artifact: artifact,
		Statistics: Statistics{
			Model:    m.Statistics(),
			Generate: genStats,
		},
	}, nil
}
