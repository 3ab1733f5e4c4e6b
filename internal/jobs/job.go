// Package jobs drives one end-to-end extraction+translation run per
// submitted video: a bounded worker pool consumes queued jobs, mutates
// each job's record through the registry, and polling callers read
// consistent snapshots.
package jobs

import "time"

// Job is the mutable record of one submitted video. It is created at
// submission, mutated only by the worker that processes it, and read
// by everyone else through Registry snapshots.
type Job struct {
	ID         string
	VideoName  string
	VideoPath  string
	Status     string
	Phase      string
	Progress   float64
	ResultPath string
	LastError  string
	CreatedAt  time.Time
	FinishedAt time.Time
}
