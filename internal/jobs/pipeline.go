package jobs

import (
	"log"
	"sort"
	"time"

	"github.com/subtrans/subtrans/internal/storage"
	"github.com/subtrans/subtrans/internal/types"
)

// Extractor produces the raw deduplicated candidate lines for a video.
// A video that cannot be opened yields an empty slice.
type Extractor interface {
	Extract(videoPath string) []types.CandidateLine
}

// Translator matches translation.Translator; redeclared here so the
// pipeline can be exercised without the HTTP client.
type Translator interface {
	Translate(text, contextLabel string) (string, error)
}

// Progress reserved for the stage boundaries: extraction crossing into
// translation holds the first 5%, persistence the final 5%.
const (
	progressTranslateStart = 0.05
	progressTranslateSpan  = 0.90
)

// Pipeline runs the extract → translate → persist stages of one job.
type Pipeline struct {
	registry     *Registry
	extractor    Extractor
	translator   Translator
	store        *storage.LocalStorage
	db           *storage.MetadataDB
	drive        *storage.DriveClient
	contextLabel string
}

// NewPipeline wires the pipeline. db and drive may be nil; both are
// best-effort mirrors of the local result.
func NewPipeline(
	registry *Registry,
	extractor Extractor,
	translator Translator,
	store *storage.LocalStorage,
	db *storage.MetadataDB,
	drive *storage.DriveClient,
	contextLabel string,
) *Pipeline {
	return &Pipeline{
		registry:     registry,
		extractor:    extractor,
		translator:   translator,
		store:        store,
		db:           db,
		drive:        drive,
		contextLabel: contextLabel,
	}
}

// Process runs one job to its terminal state. Per-line translation
// failures are recorded and skipped past; only failures outside that
// loop (or persistence failures) are job-fatal.
func (p *Pipeline) Process(job *Job) {
	p.registry.MarkRunning(job.ID)
	log.Printf("Job %s: extracting subtitles from %s", job.ID, job.VideoPath)

	lines := p.extractor.Extract(job.VideoPath)

	p.registry.SetPhase(job.ID, types.PhaseTranslating)
	p.registry.SetProgress(job.ID, progressTranslateStart)

	records := make([]types.TranscriptRecord, 0, len(lines))
	failed := 0

	// An empty extraction is a success with an empty transcript, not
	// an error.
	if len(lines) > 0 {
		log.Printf("Job %s: translating %d lines", job.ID, len(lines))
		total := len(lines)
		for i, line := range lines {
			rec := types.TranscriptRecord{
				Timestamp:  line.Timestamp,
				SourceText: line.Text,
			}
			translated, err := p.translator.Translate(line.Text, p.contextLabel)
			if err != nil {
				rec.TranslatedText = types.FailedTranslation
				rec.TranslationFailed = true
				failed++
				p.registry.SetLastError(job.ID, err.Error())
				log.Printf("Job %s: translation failed for line %d: %v", job.ID, i, err)
			} else {
				rec.TranslatedText = translated
			}
			records = append(records, rec)
			p.registry.SetProgress(job.ID, progressTranslateStart+progressTranslateSpan*float64(i+1)/float64(total))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	resultPath, err := p.store.SaveTranscript(job.ID, records)
	if err != nil {
		log.Printf("Job %s: failed to persist transcript: %v", job.ID, err)
		p.registry.MarkFailed(job.ID, err.Error())
		return
	}

	p.mirror(job, records, resultPath, failed)

	p.registry.MarkDone(job.ID, resultPath)
	log.Printf("Job %s: complete, %d lines (%d failed translations) -> %s",
		job.ID, len(records), failed, resultPath)
}

// mirror indexes the finished transcript in sqlite and optionally
// uploads it to Drive. Both are best effort and never fail the job.
func (p *Pipeline) mirror(job *Job, records []types.TranscriptRecord, resultPath string, failed int) {
	driveURL := ""
	if p.drive != nil {
		var err error
		for attempt := 1; attempt <= 3; attempt++ {
			driveURL, err = p.drive.Upload(job.ID, job.VideoName, records)
			if err == nil {
				break
			}
			log.Printf("Job %s: Drive upload attempt %d/3 failed: %v", job.ID, attempt, err)
			if attempt < 3 {
				time.Sleep(time.Duration(attempt*attempt) * time.Second)
			}
		}
		if err != nil {
			log.Printf("Job %s: Drive upload failed after 3 attempts, keeping local copy only", job.ID)
		}
	}

	if p.db != nil {
		if err := p.db.SaveTranscript(job.ID, job.VideoName, len(records), failed, resultPath, driveURL); err != nil {
			log.Printf("Job %s: metadata save failed: %v", job.ID, err)
		}
	}
}
