// Package extraction walks a video at a fixed frame interval, runs the
// detector and recognizer over sampled frames and builds the raw
// timestamped transcript, deduplicated online as lines are recognized.
package extraction

import (
	"log"
	"strings"

	"github.com/subtrans/subtrans/internal/dedup"
	"github.com/subtrans/subtrans/internal/types"
	"github.com/subtrans/subtrans/internal/video"
	"github.com/subtrans/subtrans/internal/vision"
)

// Config controls the sampling and filtering of one extraction run.
type Config struct {
	// FrameInterval processes only frames whose 0-based index is a
	// multiple of this value. Throughput control, not correctness.
	FrameInterval int `yaml:"frame_interval"`
	// MinConfidence discards recognitions below this confidence.
	MinConfidence float64 `yaml:"min_confidence"`
	// BoxMargin expands detected boxes by this many pixels per side.
	BoxMargin int `yaml:"box_margin"`
	// Filter holds the duplicate-classifier thresholds.
	Filter dedup.Config `yaml:"filter"`
}

// DefaultConfig matches the tuned production values.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 10,
		MinConfidence: 0.5,
		BoxMargin:     10,
		Filter:        dedup.DefaultConfig(),
	}
}

// Extractor orchestrates detection and recognition over sampled frames.
type Extractor struct {
	detector   vision.Detector
	recognizer vision.Recognizer
	cfg        Config
}

// New builds an extractor. Zero-valued config fields fall back to the
// defaults.
func New(detector vision.Detector, recognizer vision.Recognizer, cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.BoxMargin <= 0 {
		cfg.BoxMargin = def.BoxMargin
	}
	return &Extractor{detector: detector, recognizer: recognizer, cfg: cfg}
}

// Extract opens the video at path and runs the full extraction. A
// video that cannot be opened is a "nothing to process" condition: it
// is logged and yields an empty sequence, not an error.
func (e *Extractor) Extract(path string) []types.CandidateLine {
	src, err := video.Open(path)
	if err != nil {
		log.Printf("Extraction skipped, cannot open video %s: %v", path, err)
		return nil
	}
	defer src.Close()
	return e.Run(src)
}

// Run consumes src until frames are exhausted. One duplicate filter
// instance covers the whole run and is never reset mid-video, so a
// caption that reappears after other captions intervened counts as new.
func (e *Extractor) Run(src video.Source) []types.CandidateLine {
	filter := dedup.New(e.cfg.Filter)
	var lines []types.CandidateLine

	frameIndex := 0
	sampled := 0
	for {
		frame, ok := src.Next()
		if !ok {
			break
		}
		if frameIndex%e.cfg.FrameInterval != 0 {
			frameIndex++
			continue
		}
		frameIndex++
		sampled++

		boxes, err := e.detector.Detect(frame)
		if err != nil {
			log.Printf("Detector failed on frame %d: %v", frameIndex-1, err)
			continue
		}

		bounds := frame.Bounds()
		for _, box := range boxes {
			expanded := box.Expand(e.cfg.BoxMargin, bounds.Dx(), bounds.Dy())
			crop := vision.Crop(frame, expanded)
			processed := vision.IsolateWhiteText(crop)

			results, err := e.recognizer.Recognize(processed)
			if err != nil {
				log.Printf("Recognizer failed on frame %d: %v", frameIndex-1, err)
				continue
			}

			for _, r := range results {
				if r.Confidence < e.cfg.MinConfidence {
					continue
				}
				if !filter.IsNew(r.Text) {
					continue
				}
				lines = append(lines, types.CandidateLine{
					Timestamp:  src.PositionSeconds(),
					Text:       strings.TrimSpace(r.Text),
					Confidence: r.Confidence,
				})
			}
		}
	}

	log.Printf("Extraction finished: %d frames sampled, %d unique lines", sampled, len(lines))
	return lines
}
