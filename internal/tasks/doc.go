// Package tasks implements account state synchronization between two Reddit sessions.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.Run] : Full source → destination reconciliation
//     - Snapshots each category on both accounts (source and destination fetched concurrently)
//     - Diffs the snapshots into minimal add/remove sets
//     - Applies the mutations against the destination, tolerating per-item failure
//     - Copies preferences wholesale
//     - Returns a per-category report of what was applied, skipped, and failed
//
//  2. [SyncEngine.Plan] : Dry run
//     - Snapshots and diffs only; applies nothing
//
// # Pipeline
//
// Each set category flows fetch → diff → reconcile independently; a failure
// in one category never aborts the others, and a failed snapshot fetch skips
// only that category's reconciliation. Subscriptions reconcile through the
// bulk subscribe endpoint (one distinguished primary plus the remainder, one
// call per direction); friends and saved items reconcile item by item.
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks
