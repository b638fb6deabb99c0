// Package sim provides a reference layout problem so adaptui runs end to
// end without a real UI: a [Scene] of target positions, an [Evaluator]
// scoring layouts against it, a seeded [RandomSearch] optimizer with
// incremental sessions, a [Drift] that keeps moving the targets, and a
// [PrintApplier] that "renders" applied layouts as text.
package sim
