// Package trigger implements continuous adaptation triggers: control loops
// that periodically sample a layout's cost, decide whether re-optimization
// is warranted, run the optimizer, and apply the result only when the
// improvement clears a hysteresis band.
//
// # Loop
//
// [Trigger.Run] waits a settle delay, then ticks once per period until the
// trigger is disabled or its context is canceled. Each [Trigger.Tick]:
//
//  1. returns if the coordinator is inactive;
//  2. samples the cost (blocking, or a non-blocking poll in asynchronous
//     mode) and skips when the cost is at or below the optimization
//     threshold, the trigger is disabled, or an adaptation is running;
//  3. optimizes, either with one blocking call or with an attempt that
//     polls the incremental optimizer once per frame until it finds an
//     acceptable candidate, times out, is preempted or is disabled;
//  4. dispatches the candidate when previousCost - cost exceeds the
//     adaptation threshold.
//
// Failures are never surfaced to the caller. A missed pass has no lasting
// effect because the loop retries every period.
//
// # Ownership
//
// A coordinator is owned by exactly one trigger. Coordinators implementing
// [Claimer] have that enforced by [New]; a second trigger for the same
// coordinator fails with errors.ErrCoordinatorClaimed.
//
// # Groups
//
// [Group] runs several triggers concurrently, one per coordinator, and
// exposes their status for the CLI, dashboard and HTTP surface.
//
// # Thread Safety
//
// Trigger methods are safe for concurrent use. Within one trigger, ticks
// are strictly sequential and at most one asynchronous attempt is in
// flight.
package trigger
