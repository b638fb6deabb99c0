// Package adaptation provides the concrete coordinator a trigger drives.
//
// A [Manager] owns either a single element's layout (local scope) or the
// layouts of several [Element]s (global scope). It evaluates costs through
// a layout.Evaluator, searches for better layouts through a
// layout.Optimizer and applies accepted layouts through an [Applier] on
// background goroutines, reporting IsAdapting while any apply is running.
//
// Each Manager is owned by at most one trigger; see [Manager.Claim].
package adaptation
