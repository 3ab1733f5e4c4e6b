// Package cleanup implements the retention policy: uploaded videos and
// result files are swept by age, and terminal job records are evicted
// from the in-memory registry so neither grows without bound.
package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/subtrans/subtrans/internal/jobs"
)

// Scheduler periodically sweeps the watched directories and the job
// registry.
type Scheduler struct {
	dirs     []string
	registry *jobs.Registry
	interval time.Duration
	maxAge   time.Duration
	jobTTL   time.Duration
	stopChan chan struct{}
}

// NewScheduler creates a scheduler sweeping dirs every interval,
// deleting files older than maxAge and evicting finished jobs older
// than jobTTL.
func NewScheduler(dirs []string, registry *jobs.Registry, interval, maxAge, jobTTL time.Duration) *Scheduler {
	return &Scheduler{
		dirs:     dirs,
		registry: registry,
		interval: interval,
		maxAge:   maxAge,
		jobTTL:   jobTTL,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop, running one sweep immediately.
func (s *Scheduler) Start() {
	log.Println("Running initial retention sweep...")
	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Retention scheduler started (interval: %s, file max age: %s, job ttl: %s)",
		s.interval, s.maxAge, s.jobTTL)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Retention scheduler stopped")
}

func (s *Scheduler) sweep() {
	for _, dir := range s.dirs {
		s.cleanOldFiles(dir)
	}
	if evicted := s.registry.EvictTerminal(s.jobTTL); evicted > 0 {
		log.Printf("Evicted %d finished job records", evicted)
	}
}

// cleanOldFiles removes files older than maxAge from dir.
func (s *Scheduler) cleanOldFiles(dir string) {
	now := time.Now()

	var deletedCount int
	var deletedSize int64

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if info.IsDir() {
			return nil
		}

		age := now.Sub(info.ModTime())
		if age > s.maxAge {
			size := info.Size()
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to delete old file %s: %v", path, err)
			} else {
				deletedCount++
				deletedSize += size
				log.Printf("Deleted old file: %s (age: %s, size: %dKB)",
					filepath.Base(path), age.Round(time.Hour), size/1024)
			}
		}
		return nil
	})

	if err != nil {
		log.Printf("Error during cleanup of %s: %v", dir, err)
	}

	if deletedCount > 0 {
		log.Printf("Cleanup of %s complete: %d files deleted, %.2fMB freed",
			dir, deletedCount, float64(deletedSize)/(1024*1024))
	}
}

// EnsureDirExists creates dir if it doesn't exist.
func EnsureDirExists(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	log.Printf("Directory ready: %s", dir)
	return nil
}
