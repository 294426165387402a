package override

import "errors"

// Domain errors for the override package.
var (
	// ErrInvalidRule is returned when a rule file cannot be decoded or a
	// rule expression fails to compile.
	ErrInvalidRule = errors.New("override: invalid rule")

	// ErrRuleEvaluation is returned when a compiled rule fails at run time,
	// for example by reading a key that does not exist.
	ErrRuleEvaluation = errors.New("override: rule evaluation failed")
)
