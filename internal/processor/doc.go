// Package processor contains the corpus orchestration. It discovers the
// dialogue files under one or more roots, hands them to the record
// pipeline one at a time, and keeps per-file and total timing for the
// end-of-run summary.
package processor
