package types

// Job status constants
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
	StatusUnknown = "unknown"
)

// Phase labels reported while a job is running
const (
	PhaseQueued      = "queued"
	PhaseExtracting  = "extracting"
	PhaseTranslating = "translating"
	PhaseComplete    = "complete"
)

// FailedTranslation is the placeholder written into a transcript record
// when the translation call for that line failed. Callers should check
// TranslationFailed rather than comparing against this string.
const FailedTranslation = "(translation failed)"

// CandidateLine is a recognized subtitle span with its playback
// position, prior to translation.
type CandidateLine struct {
	Timestamp  float64
	Text       string
	Confidence float64
}

// TranscriptRecord is one line of the final bilingual transcript.
type TranscriptRecord struct {
	Timestamp         float64 `json:"timestamp"`
	SourceText        string  `json:"source_text"`
	TranslatedText    string  `json:"translated_text"`
	TranslationFailed bool    `json:"translation_failed,omitempty"`
}

// StatusSnapshot is the read-only view of a job returned to polling
// clients. It is always well-formed, even for unknown job ids.
type StatusSnapshot struct {
	Status    string  `json:"status"`
	Phase     string  `json:"phase"`
	Progress  float64 `json:"progress"`
	LastError string  `json:"last_error"`
}
