package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/subtrans/subtrans/internal/types"
)

// LocalStorage persists finished transcripts to the local filesystem.
// The JSON array under results/ is the durable output of a job.
type LocalStorage struct {
	resultsDir string
}

// NewLocalStorage creates a local storage handler rooted at resultsDir.
func NewLocalStorage(resultsDir string) *LocalStorage {
	return &LocalStorage{resultsDir: resultsDir}
}

// SaveTranscript writes the transcript as a UTF-8 JSON array, already
// sorted by timestamp by the caller. An empty run persists as "[]".
func (ls *LocalStorage) SaveTranscript(jobID string, records []types.TranscriptRecord) (string, error) {
	if err := os.MkdirAll(ls.resultsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %v", err)
	}

	if records == nil {
		records = []types.TranscriptRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript: %v", err)
	}

	path := filepath.Join(ls.resultsDir, jobID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save transcript: %v", err)
	}
	return path, nil
}

// ReadTranscript loads a persisted transcript back from disk.
func ReadTranscript(path string) ([]types.TranscriptRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %v", err)
	}
	var records []types.TranscriptRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %v", err)
	}
	return records, nil
}

// RenderText flattens the transcript into a readable bilingual text
// file, one line pair per record.
func RenderText(records []types.TranscriptRecord) string {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "[%8.2fs] %s\n", r.Timestamp, r.SourceText)
		fmt.Fprintf(&b, "           %s\n", r.TranslatedText)
	}
	return b.String()
}
