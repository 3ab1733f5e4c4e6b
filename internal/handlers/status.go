package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/subtrans/subtrans/internal/jobs"
)

// StatusHandler serves job status snapshots to polling clients.
type StatusHandler struct {
	registry *jobs.Registry
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(registry *jobs.Registry) *StatusHandler {
	return &StatusHandler{registry: registry}
}

// Handle returns a well-formed snapshot for any id, including unknown
// ones. Responses are marked uncacheable so pollers always see fresh
// progress.
func (h *StatusHandler) Handle(c *fiber.Ctx) error {
	noCache(c)
	return c.JSON(h.registry.Snapshot(c.Params("id")))
}

// ResultHandler serves the persisted transcript once a job is done.
type ResultHandler struct {
	registry *jobs.Registry
}

// NewResultHandler creates a new result handler.
func NewResultHandler(registry *jobs.Registry) *ResultHandler {
	return &ResultHandler{registry: registry}
}

// Handle sends the transcript JSON when ready; until then it answers
// with the current status and progress as the not-ready signal.
func (h *ResultHandler) Handle(c *fiber.Ctx) error {
	id := c.Params("id")
	if path, ok := h.registry.Result(id); ok {
		if _, err := os.Stat(path); err == nil {
			return c.SendFile(path)
		}
	}
	noCache(c)
	snap := h.registry.Snapshot(id)
	return c.JSON(fiber.Map{
		"status":   snap.Status,
		"progress": snap.Progress,
	})
}

func noCache(c *fiber.Ctx) {
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")
}
