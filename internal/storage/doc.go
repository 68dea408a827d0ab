// Package storage persists Markdown artifacts on the local filesystem.
//
// Design decision: Artifacts are written to a temporary file in the target
// directory and renamed into place. A file at a destination path is
// therefore always complete, which is what allows existence alone to mean
// "already done" on the next run.
package storage
