// Package model holds the in-memory commissioning model built from an ETS
// project: a registry of group addresses and the functional objects that
// reference them.
//
// The model is built once per run by Builder. After construction the only
// mutable state is the Custom extension map on each entity, which override
// hooks populate before a generator reads the model.
//
// # Structure
//
//   - GroupAddress: a bus address with its normalised datapoint and the ids
//     of the objects referencing it
//   - FunctionalObject: an ETS function placed in a room/floor, referencing
//     group addresses by id
//
// Links between the two are ids, not pointers. Both collections keep
// construction order so generators produce deterministic output.
package model
