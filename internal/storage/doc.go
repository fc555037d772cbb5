// Package storage persists the scheduler's cycle-statistics journal.
//
// It currently supports:
//   - A dependency-free JSONL file backend
//   - An optional SQLite backend (build with -tags sqlite)
package storage
