package jobs

import (
	"sync"
	"time"

	"github.com/subtrans/subtrans/internal/types"
)

// Registry owns the job-id → record map. It is the only structure
// shared between workers and the polling surface, so every access goes
// through its lock. Constructed once in main and passed by handle;
// never ambient global state.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Add registers a freshly submitted job as queued.
func (r *Registry) Add(id, videoName, videoPath string) *Job {
	job := &Job{
		ID:        id,
		VideoName: videoName,
		VideoPath: videoPath,
		Status:    types.StatusQueued,
		Phase:     types.PhaseQueued,
		CreatedAt: time.Now(),
	}
	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()
	return job
}

// Snapshot returns a well-formed status view. Unknown ids report the
// "unknown" status rather than an error.
func (r *Registry) Snapshot(id string) types.StatusSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return types.StatusSnapshot{Status: types.StatusUnknown}
	}
	return types.StatusSnapshot{
		Status:    job.Status,
		Phase:     job.Phase,
		Progress:  job.Progress,
		LastError: job.LastError,
	}
}

// Result returns the persisted transcript path once the job is done.
func (r *Registry) Result(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok || job.Status != types.StatusDone {
		return "", false
	}
	return job.ResultPath, true
}

func (r *Registry) update(id string, fn func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		fn(job)
	}
}

// MarkRunning transitions queued → running at the start of extraction.
func (r *Registry) MarkRunning(id string) {
	r.update(id, func(j *Job) {
		j.Status = types.StatusRunning
		j.Phase = types.PhaseExtracting
		if j.Progress < 0.001 {
			j.Progress = 0.001
		}
	})
}

// SetPhase updates the coarse stage label.
func (r *Registry) SetPhase(id, phase string) {
	r.update(id, func(j *Job) {
		j.Phase = phase
	})
}

// SetProgress raises the progress fraction. Lower values are ignored
// so progress never decreases within a run.
func (r *Registry) SetProgress(id string, p float64) {
	r.update(id, func(j *Job) {
		if p > j.Progress {
			j.Progress = p
		}
	})
}

// SetLastError records the most recent non-fatal per-item error.
func (r *Registry) SetLastError(id, msg string) {
	r.update(id, func(j *Job) {
		j.LastError = msg
	})
}

// MarkDone transitions to the terminal success state. Progress reaches
// exactly 1.0 only here.
func (r *Registry) MarkDone(id, resultPath string) {
	r.update(id, func(j *Job) {
		j.Status = types.StatusDone
		j.Phase = types.PhaseComplete
		j.Progress = 1.0
		j.ResultPath = resultPath
		j.FinishedAt = time.Now()
	})
}

// MarkFailed transitions to the terminal error state. The job stays
// queryable; no retry is attempted.
func (r *Registry) MarkFailed(id, cause string) {
	r.update(id, func(j *Job) {
		j.Status = types.StatusError
		j.LastError = cause
		j.FinishedAt = time.Now()
	})
}

// EvictTerminal removes done/error jobs that finished more than ttl
// ago, returning how many were dropped. Running and queued jobs are
// never evicted.
func (r *Registry) EvictTerminal(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, job := range r.jobs {
		if job.Status != types.StatusDone && job.Status != types.StatusError {
			continue
		}
		if job.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}
	return evicted
}

// Len reports how many records the registry currently holds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
