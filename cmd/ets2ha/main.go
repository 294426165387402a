// ets2ha converts ETS KNX project exports into Home Assistant or linknx
// configuration.
//
// Typical use:
//
//	ets2ha generate house.knxproj > knx.yaml
//	ets2ha generate -f linknx --address-style ThreeLevel house.knxproj
//	ets2ha inspect house.knxproj
//
// Settings come from built-in defaults, an optional YAML file (--config),
// ETS2HA_* environment variables and finally command line flags.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/ets2ha/internal/commissioning/etsimport"
	"github.com/nerrad567/ets2ha/internal/commissioning/generate"
	"github.com/nerrad567/ets2ha/internal/commissioning/model"
	"github.com/nerrad567/ets2ha/internal/commissioning/override"
	"github.com/nerrad567/ets2ha/internal/commissioning/pipeline"
	"github.com/nerrad567/ets2ha/internal/infrastructure/config"
	"github.com/nerrad567/ets2ha/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the command line grammar.
type CLI struct {
	Config   string `help:"YAML configuration file." short:"c" type:"existingfile"`
	LogLevel string `help:"Log level (debug, info, warn, error)." name:"log-level"`

	Generate GenerateCmd `cmd:"" help:"Convert an ETS project into configuration."`
	Inspect  InspectCmd  `cmd:"" help:"Dump the model built from an ETS project as YAML."`
	Formats  FormatsCmd  `cmd:"" help:"List the available output formats."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`
}

// env carries what every command needs at run time.
type env struct {
	ctx    context.Context
	cli    *CLI
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command. It is separated from
// main so tests can drive the whole program.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("ets2ha"),
		kong.Description("Convert ETS KNX projects into Home Assistant or linknx configuration."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
		kong.Vars{
			"formats": strings.Join(generate.Formats(), ", "),
		},
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	return kctx.Run(&env{ctx: ctx, cli: &cli, stdout: stdout, stderr: stderr})
}

// loadConfig applies the global flags on top of config.Load.
func (e *env) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(e.cli.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if e.cli.LogLevel != "" {
		cfg.Logging.Level = e.cli.LogLevel
	}
	return cfg, nil
}

// logger builds the run logger. Log output never goes to the artifact
// stream unless the configuration asks for stdout explicitly.
func (e *env) logger(cfg *config.Config, runID string) *logging.Logger {
	out := e.stderr
	if strings.EqualFold(cfg.Logging.Output, "stdout") {
		out = e.stdout
	}
	return logging.NewWithWriter(cfg.Logging, version, out).With("run_id", runID)
}

// GenerateCmd converts a project into the selected format.
type GenerateCmd struct {
	File         string `arg:"" help:"ETS project export (.knxproj)." type:"existingfile"`
	Format       string `help:"Output format (${formats}). Defaults to homeass." short:"f"`
	AddressStyle string `help:"Override the project's group address style (Free, TwoLevel, ThreeLevel)." name:"address-style"`
	Rules        string `help:"YAML override rules applied before generation." type:"existingfile"`
	Output       string `help:"Write to this file instead of stdout. A .xz suffix compresses the output." short:"o" type:"path"`
	Digest       bool   `help:"Log a BLAKE3 digest of the generated configuration."`
	Publish      bool   `help:"Publish the generated configuration to the configured MQTT broker."`
}

// Run executes the generate command.
func (c *GenerateCmd) Run(e *env) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	c.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := e.logger(cfg, runID)

	project, err := readProject(c.File, log)
	if err != nil {
		return err
	}

	hook, err := loadHook(cfg.Conversion.RulesFile, log)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(project, pipeline.Options{
		Format:       cfg.Conversion.Format,
		AddressStyle: cfg.Conversion.AddressStyle,
		Hook:         hook,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	data, err := res.Artifact.Render()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", cfg.Conversion.Format, err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	if err := writeArtifact(e.stdout, cfg.Output.Path, data); err != nil {
		return err
	}

	sum := digest(data)
	if cfg.Output.Digest {
		log.Info("artifact digest", "blake3", sum, "bytes", len(data))
	}

	stats := res.Statistics
	log.Info("conversion complete",
		"format", cfg.Conversion.Format,
		"group_addresses", stats.Model.GroupAddresses,
		"objects", stats.Model.Objects,
		"emitted", stats.Generate.Emitted,
		"orphans", stats.Generate.Orphans,
		"conflicts", stats.Generate.Conflicts,
	)

	if cfg.Publish.Enabled {
		summary := newRunSummary(runID, cfg.Conversion.Format, res, sum)
		if err := publishArtifact(e.ctx, cfg, summary, data, log); err != nil {
			return err
		}
	}

	return nil
}

// applyFlags copies flags that were given onto cfg.
func (c *GenerateCmd) applyFlags(cfg *config.Config) {
	if c.Format != "" {
		cfg.Conversion.Format = c.Format
	}
	if cfg.Conversion.Format == "" {
		cfg.Conversion.Format = generate.FormatHomeAssistant
	}
	if c.AddressStyle != "" {
		cfg.Conversion.AddressStyle = c.AddressStyle
	}
	if c.Rules != "" {
		cfg.Conversion.RulesFile = c.Rules
	}
	if c.Output != "" {
		cfg.Output.Path = c.Output
	}
	if c.Digest {
		cfg.Output.Digest = true
	}
	if c.Publish {
		cfg.Publish.Enabled = true
	}
}

// InspectCmd prints the model a project produces, after override rules.
type InspectCmd struct {
	File         string `arg:"" help:"ETS project export (.knxproj)." type:"existingfile"`
	AddressStyle string `help:"Override the project's group address style (Free, TwoLevel, ThreeLevel)." name:"address-style"`
	Rules        string `help:"YAML override rules to apply before dumping." type:"existingfile"`
}

// Run executes the inspect command.
func (c *InspectCmd) Run(e *env) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	if c.AddressStyle != "" {
		cfg.Conversion.AddressStyle = c.AddressStyle
	}
	if c.Rules != "" {
		cfg.Conversion.RulesFile = c.Rules
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := e.logger(cfg, uuid.NewString())

	project, err := readProject(c.File, log)
	if err != nil {
		return err
	}

	builder := model.NewBuilder()
	builder.SetLogger(log)
	m, err := builder.Build(project, cfg.Conversion.AddressStyle)
	if err != nil {
		return err
	}

	hook, err := loadHook(cfg.Conversion.RulesFile, log)
	if err != nil {
		return err
	}
	if hook != nil {
		if err := hook.Apply(m); err != nil {
			return fmt.Errorf("applying overrides: %w", err)
		}
	}

	enc := yaml.NewEncoder(e.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(m.Dump()); err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	return enc.Close()
}

// FormatsCmd lists the registered generators.
type FormatsCmd struct{}

// Run executes the formats command.
func (c *FormatsCmd) Run(e *env) error {
	for _, name := range generate.Formats() {
		if _, err := fmt.Fprintln(e.stdout, name); err != nil {
			return err
		}
	}
	return nil
}

// VersionCmd prints build information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(e *env) error {
	_, err := fmt.Fprintf(e.stdout, "ets2ha %s (commit %s, built %s)\n", version, commit, date)
	return err
}

func readProject(path string, log *logging.Logger) (*etsimport.Project, error) {
	reader := etsimport.NewReader()
	reader.SetLogger(log)
	project, err := reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	return project, nil
}

// loadHook returns the rule set in path, or nil when path is empty.
func loadHook(path string, log *logging.Logger) (override.Hook, error) {
	if path == "" {
		return nil, nil
	}
	rules, err := override.LoadRules(path)
	if err != nil {
		return nil, fmt.Errorf("loading override rules: %w", err)
	}
	rules.SetLogger(log)
	log.Debug("override rules loaded", "path", path, "rules", rules.Len())
	return rules, nil
}
