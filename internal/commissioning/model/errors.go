package model

import "errors"

// Domain errors for the model package.
var (
	// ErrMissingSection is returned when a required level of the project
	// tree (project information, group ranges or locations) is absent.
	ErrMissingSection = errors.New("model: required project section missing")

	// ErrUnknownFunctionType is returned when a function's coded type label
	// cannot be parsed or does not index a known function kind.
	ErrUnknownFunctionType = errors.New("model: unknown function type")
)
