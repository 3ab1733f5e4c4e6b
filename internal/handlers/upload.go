package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/subtrans/subtrans/internal/jobs"
	"github.com/subtrans/subtrans/internal/video"
)

// UploadHandler accepts a video and starts a background job for it.
type UploadHandler struct {
	pool      *jobs.WorkerPool
	registry  *jobs.Registry
	uploadDir string
	maxSizeMB int
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(pool *jobs.WorkerPool, registry *jobs.Registry, uploadDir string, maxSizeMB int) *UploadHandler {
	return &UploadHandler{
		pool:      pool,
		registry:  registry,
		uploadDir: uploadDir,
		maxSizeMB: maxSizeMB,
	}
}

// Handle saves the uploaded video under a generated name, registers a
// queued job keyed by that name's stem and returns the job id
// immediately.
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No video uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !video.ValidateFormat(file.Filename) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported video format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	generated := generateName(file.Filename)
	jobID := strings.TrimSuffix(generated, filepath.Ext(generated))
	videoPath := filepath.Join(h.uploadDir, generated)

	if err := c.SaveFile(file, videoPath); err != nil {
		log.Printf("Failed to save uploaded video: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	job := h.registry.Add(jobID, file.Filename, videoPath)
	h.pool.Enqueue(job)

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  job.Status,
		"message": "Video uploaded, extraction started",
	})
}

// generateName builds a collision-free stored filename from the upload:
// timestamp, truncated original stem, short unique suffix.
func generateName(original string) string {
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if len(stem) > 40 {
		stem = stem[:40]
	}
	ts := time.Now().Format("20060102_150405")
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%s_%s%s", ts, stem, suffix, strings.ToLower(filepath.Ext(original)))
}
