// Package layout defines the values exchanged between adaptation triggers,
// coordinators and layout optimizers.
//
// A [Layout] is the spatial configuration of a single UI element. Layouts
// are produced by an [Optimizer] (or an [IncrementalOptimizer] session),
// scored by an [Evaluator], and handed to a coordinator once accepted.
// Callers treat layouts as immutable values; the optimizer returns fresh
// slices on every call.
//
// # Optimizer Modes
//
// Two optimization modes are supported:
//
//   - Full search: [Optimizer.Optimize] blocks until a result is found.
//   - Incremental: [IncrementalOptimizer.Begin] opens a [Session] that is
//     advanced one bounded [Step] at a time, typically once per frame.
//
// A [Request] mirrors the optimization request sent to remote solvers: the
// initial UI configuration plus the number of objectives. Requests can be
// loaded from YAML with [LoadRequest].
package layout
