// Package generate turns a commissioning model into configuration for a
// downstream platform.
//
// Generators are registered by format name:
//
//   - homeass: the knx: section of a Home Assistant configuration
//   - linknx: <object> definitions for the linknx daemon
//
// A generator only reads the model. Recoverable problems (unused addresses,
// unmapped datapoints, property conflicts) are logged and counted in
// Statistics; they never abort generation.
package generate
