// Package pipeline runs a conversion end to end: build the model, apply the
// override hook once, then run exactly one generator.
//
// Any fatal error (invalid addressing style, unknown function type, missing
// project section, hook failure, unknown format) stops the run before a
// generator produces output.
package pipeline
