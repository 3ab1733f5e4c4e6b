package jobs

import (
	"fmt"
	"log"
	"runtime/debug"
)

// WorkerPool bounds how many jobs run concurrently. Submissions past
// the queue buffer block the submitter rather than spawning unbounded
// goroutines.
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	pipeline    *Pipeline
	registry    *Registry
}

// NewWorkerPool creates a pool of workerCount workers with a queue
// buffer of queueSize pending jobs.
func NewWorkerPool(workerCount, queueSize int, pipeline *Pipeline, registry *Registry) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 2
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &WorkerPool{
		jobQueue:    make(chan *Job, queueSize),
		workerCount: workerCount,
		pipeline:    pipeline,
		registry:    registry,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// Enqueue hands a registered job to the pool.
func (wp *WorkerPool) Enqueue(job *Job) {
	wp.jobQueue <- job
	log.Printf("Job %s enqueued (video: %s)", job.ID, job.VideoName)
}

// worker processes jobs from the queue. A panic inside the pipeline is
// converted into a job-fatal error instead of killing the process.
func (wp *WorkerPool) worker(id int) {
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					wp.registry.MarkFailed(job.ID, fmt.Sprintf("worker panic: %v", r))
				}
			}()
			log.Printf("Worker %d: processing job %s", id, job.ID)
			wp.pipeline.Process(job)
		}()
	}
}
