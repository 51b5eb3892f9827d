// Package models defines the domain types for Reddit account synchronization.
//
// The package contains two categories of types:
//
// 1. Run-scoped values: immutable data produced and consumed by one sync run
//   - [Item] : One remote entity (subreddit, user, saved post/comment)
//   - [Snapshot] : The set of items one account holds in one category
//   - [Diff] : The items to add to and remove from the destination
//   - [ReconcileReport] : Per-category apply/skip/fail accounting
//   - [RunResult] : The aggregate outcome of one run
//
// 2. Persisted entities: rows in the run-history database
//   - [SyncRun] : One completed run with its summary counts
//   - [ItemFailure] : One failed mutation with enough detail to retry it
//
// Identity follows the remote service's rules: subreddit and user names are
// case-insensitive (normalized to lower case), saved-item IDs are exact.
package models
