// Package collection defines the public contract of the entity lifecycle and
// change-tracking engine: the generic item hooks, the adapter boundary used to
// persist collections, the action surface dispatched by consumers, and the
// composable behavior records the engine is assembled from.
//
// The engine itself lives in internal/engine; this package carries only types
// and pure helpers so hosts and behaviors share one vocabulary without
// depending on engine internals.
package collection
