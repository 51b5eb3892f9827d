// package repositories provides the persistence layer for the run-history
// database: completed sync runs and the per-item failures they recorded.
package repositories
