package override

import (
	"fmt"
	"maps"
	"os"
	"reflect"
	"slices"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/ets2ha/internal/commissioning/model"
)

// CEL variable names exposed to rules.
const (
	varGroupAddress = "ga"
	varObject       = "obj"
)

// Logger is the optional logging interface used by RuleSet.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

// Rule is one entry of a rule file.
type Rule struct {
	// Name labels the rule in logs and errors.
	Name string `yaml:"name"`

	// When is a CEL condition. An empty condition matches everything.
	When string `yaml:"when"`

	// Set assigns literal values.
	Set map[string]any `yaml:"set"`

	// Compute assigns the result of CEL expressions. Computed keys are
	// written after Set.
	Compute map[string]string `yaml:"compute"`
}

// RuleFile is the YAML layout of a rule file.
type RuleFile struct {
	GroupAddresses []Rule `yaml:"group_addresses"`
	Objects        []Rule `yaml:"objects"`
}

// compiledRule is a Rule with its expressions ready to run.
type compiledRule struct {
	label   string
	when    cel.Program
	set     map[string]any
	compute map[string]cel.Program
	keys    []string // compute keys in stable order
}

// RuleSet is a Hook driven by declarative rules.
type RuleSet struct {
	groupAddresses []compiledRule
	objects        []compiledRule
	logger         Logger
}

// LoadRules reads and compiles a YAML rule file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and compiles YAML rules.
//
// Returns ErrInvalidRule if the document is malformed or any expression
// fails to compile.
func ParseRules(data []byte) (*RuleSet, error) {
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing rules: %w", ErrInvalidRule, err)
	}
	return Compile(file)
}

// Compile builds a RuleSet from decoded rules.
func Compile(file RuleFile) (*RuleSet, error) {
	gaEnv, err := newEnv(varGroupAddress)
	if err != nil {
		return nil, err
	}
	objEnv, err := newEnv(varObject)
	if err != nil {
		return nil, err
	}

	rs := &RuleSet{}
	for i, r := range file.GroupAddresses {
		cr, err := compileRule(gaEnv, r, fmt.Sprintf("group_addresses[%d]", i))
		if err != nil {
			return nil, err
		}
		rs.groupAddresses = append(rs.groupAddresses, cr)
	}
	for i, r := range file.Objects {
		cr, err := compileRule(objEnv, r, fmt.Sprintf("objects[%d]", i))
		if err != nil {
			return nil, err
		}
		rs.objects = append(rs.objects, cr)
	}
	return rs, nil
}

// SetLogger sets a logger for rule match output.
func (rs *RuleSet) SetLogger(logger Logger) {
	rs.logger = logger
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	return len(rs.groupAddresses) + len(rs.objects)
}

// Apply evaluates every rule against every entity. Rules run in file order,
// so a later rule sees keys written by an earlier one.
func (rs *RuleSet) Apply(m *model.Model) error {
	for _, ga := range m.GroupAddresses() {
		for _, r := range rs.groupAddresses {
			matched, err := r.apply(varGroupAddress, groupAddressVars(ga), ga.Custom)
			if err != nil {
				return fmt.Errorf("%s on group address %s: %w", r.label, ga.ID(), err)
			}
			if matched {
				rs.debug("override rule matched", "rule", r.label, "group_address", ga.Address())
			}
		}
	}
	for _, obj := range m.Objects() {
		for _, r := range rs.objects {
			matched, err := r.apply(varObject, objectVars(obj), obj.Custom)
			if err != nil {
				return fmt.Errorf("%s on object %s: %w", r.label, obj.ID(), err)
			}
			if matched {
				rs.debug("override rule matched", "rule", r.label, "object", obj.Name())
			}
		}
	}
	return nil
}

func (rs *RuleSet) debug(msg string, args ...any) {
	if rs.logger != nil {
		rs.logger.Debug(msg, args...)
	}
}

func (r compiledRule) apply(name string, vars map[string]any, custom model.Custom) (bool, error) {
	activation := map[string]any{name: vars}

	if r.when != nil {
		out, _, err := r.when.Eval(activation)
		if err != nil {
			return false, fmt.Errorf("%w: when: %w", ErrRuleEvaluation, err)
		}
		matched, ok := out.(types.Bool)
		if !ok {
			return false, fmt.Errorf("%w: when: result is %s, not bool", ErrRuleEvaluation, out.Type().TypeName())
		}
		if !matched {
			return false, nil
		}
	}

	for key, value := range r.set {
		custom[key] = cloneValue(value)
	}
	for _, key := range r.keys {
		out, _, err := r.compute[key].Eval(activation)
		if err != nil {
			return false, fmt.Errorf("%w: compute %s: %w", ErrRuleEvaluation, key, err)
		}
		value, err := nativeValue(out)
		if err != nil {
			return false, fmt.Errorf("%w: compute %s: %w", ErrRuleEvaluation, key, err)
		}
		custom[key] = value
	}
	return true, nil
}

func newEnv(name string) (*cel.Env, error) {
	env, err := cel.NewEnv(cel.Variable(name, cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}
	return env, nil
}

func compileRule(env *cel.Env, r Rule, label string) (compiledRule, error) {
	if r.Name != "" {
		label = fmt.Sprintf("%s (%s)", label, r.Name)
	}
	if len(r.Set) == 0 && len(r.Compute) == 0 {
		return compiledRule{}, fmt.Errorf("%w: %s: nothing to set", ErrInvalidRule, label)
	}

	cr := compiledRule{label: label, set: r.Set}
	if r.When != "" {
		prg, err := compileExpr(env, r.When, true)
		if err != nil {
			return compiledRule{}, fmt.Errorf("%w: %s: when: %w", ErrInvalidRule, label, err)
		}
		cr.when = prg
	}

	if len(r.Compute) > 0 {
		cr.compute = make(map[string]cel.Program, len(r.Compute))
		for _, key := range sortedKeys(r.Compute) {
			prg, err := compileExpr(env, r.Compute[key], false)
			if err != nil {
				return compiledRule{}, fmt.Errorf("%w: %s: compute %s: %w", ErrInvalidRule, label, key, err)
			}
			cr.compute[key] = prg
			cr.keys = append(cr.keys, key)
		}
	}
	return cr, nil
}

func compileExpr(env *cel.Env, expr string, wantBool bool) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	if wantBool {
		out := ast.OutputType()
		if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("condition must be bool, got %s", out)
		}
	}
	return env.Program(ast)
}

// nativeValue converts a CEL result into plain Go values so it can be
// serialised and cloned like YAML input.
func nativeValue(v ref.Val) (any, error) {
	switch v.(type) {
	case traits.Mapper:
		return v.ConvertToNative(reflect.TypeOf(map[string]any{}))
	case traits.Lister:
		return v.ConvertToNative(reflect.TypeOf([]any{}))
	default:
		return v.Value(), nil
	}
}

// cloneValue deep-copies maps and slices so entities never share a value.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func groupAddressVars(ga *model.GroupAddress) map[string]any {
	return map[string]any{
		"id":          ga.ID(),
		"name":        ga.Name(),
		"description": ga.Description(),
		"address":     ga.Address(),
		"datapoint":   ga.Datapoint().String(),
		"objects":     nonNil(ga.Objects()),
		"custom":      maps.Clone(map[string]any(ga.Custom)),
	}
}

func objectVars(obj *model.FunctionalObject) map[string]any {
	return map[string]any{
		"id":              obj.ID(),
		"name":            obj.Name(),
		"type":            obj.Type().String(),
		"room":            obj.Room(),
		"floor":           obj.Floor(),
		"group_addresses": nonNil(obj.GroupAddressIDs()),
		"custom":          maps.Clone(map[string]any(obj.Custom)),
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
