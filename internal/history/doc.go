// Package history journals applied adaptations. A [Recorder] turns
// layout.applied events into [Record]s and writes them to a [Store]; the
// bbolt-backed [BoltStore] persists them across runs so the CLI and the
// HTTP surface can list what changed and when.
package history
