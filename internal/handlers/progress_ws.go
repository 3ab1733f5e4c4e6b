package handlers

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/subtrans/subtrans/internal/jobs"
	"github.com/subtrans/subtrans/internal/types"
)

// ProgressHandler pushes live status snapshots over a websocket so
// clients don't have to poll while a job runs.
type ProgressHandler struct {
	registry *jobs.Registry
	interval time.Duration
}

// NewProgressHandler creates a new progress feed handler.
func NewProgressHandler(registry *jobs.Registry) *ProgressHandler {
	return &ProgressHandler{
		registry: registry,
		interval: 500 * time.Millisecond,
	}
}

// Handle streams snapshots for the job id in the route until the job
// reaches a terminal state, the id is unknown, or the client goes away.
func (h *ProgressHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	id := c.Params("id")
	log.Printf("Progress feed opened for job %s", id)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		snap := h.registry.Snapshot(id)
		if err := c.WriteJSON(snap); err != nil {
			log.Printf("Progress feed for job %s closed by client: %v", id, err)
			return
		}
		switch snap.Status {
		case types.StatusDone, types.StatusError, types.StatusUnknown:
			log.Printf("Progress feed for job %s finished (%s)", id, snap.Status)
			return
		}
		<-ticker.C
	}
}
