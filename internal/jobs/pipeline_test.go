package jobs

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/subtrans/subtrans/internal/storage"
	"github.com/subtrans/subtrans/internal/types"
)

type fakeExtractor struct {
	lines []types.CandidateLine
}

func (f *fakeExtractor) Extract(string) []types.CandidateLine {
	return f.lines
}

type fakeTranslator struct {
	fn func(text string) (string, error)
}

func (f *fakeTranslator) Translate(text, _ string) (string, error) {
	return f.fn(text)
}

func newTestPipeline(t *testing.T, ex Extractor, tr Translator) (*Pipeline, *Registry) {
	t.Helper()
	registry := NewRegistry()
	store := storage.NewLocalStorage(t.TempDir())
	return NewPipeline(registry, ex, tr, store, nil, nil, "test drama"), registry
}

func readResult(t *testing.T, path string) []types.TranscriptRecord {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	var records []types.TranscriptRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("result is not a JSON array: %v", err)
	}
	return records
}

func TestProcessEmptyExtractionSucceeds(t *testing.T) {
	p, registry := newTestPipeline(t,
		&fakeExtractor{},
		&fakeTranslator{fn: func(string) (string, error) { return "", errors.New("must not be called") }},
	)
	job := registry.Add("job1", "empty.mp4", "empty.mp4")

	p.Process(job)

	snap := registry.Snapshot("job1")
	if snap.Status != types.StatusDone {
		t.Fatalf("status = %q, want done", snap.Status)
	}
	if snap.Progress != 1.0 {
		t.Errorf("progress = %f, want 1.0", snap.Progress)
	}
	if snap.Phase != types.PhaseComplete {
		t.Errorf("phase = %q, want complete", snap.Phase)
	}

	path, ok := registry.Result("job1")
	if !ok {
		t.Fatal("result not available for a done job")
	}
	if records := readResult(t, path); len(records) != 0 {
		t.Errorf("persisted %d records for an empty run, want 0", len(records))
	}
}

func TestProcessToleratesAllTranslationsFailing(t *testing.T) {
	lines := []types.CandidateLine{
		{Timestamp: 1.0, Text: "第一句"},
		{Timestamp: 2.0, Text: "第二句"},
		{Timestamp: 3.0, Text: "第三句"},
	}
	p, registry := newTestPipeline(t,
		&fakeExtractor{lines: lines},
		&fakeTranslator{fn: func(string) (string, error) { return "", errors.New("rate limited") }},
	)
	job := registry.Add("job2", "v.mp4", "v.mp4")

	p.Process(job)

	snap := registry.Snapshot("job2")
	if snap.Status != types.StatusDone {
		t.Fatalf("status = %q, want done despite translation failures", snap.Status)
	}
	if snap.LastError == "" {
		t.Error("last_error empty after translation failures")
	}

	path, _ := registry.Result("job2")
	records := readResult(t, path)
	if len(records) != 3 {
		t.Fatalf("persisted %d records, want 3", len(records))
	}
	for _, r := range records {
		if r.TranslatedText != types.FailedTranslation || !r.TranslationFailed {
			t.Errorf("record %+v does not carry the failure outcome", r)
		}
	}
}

func TestProcessSortsByTimestamp(t *testing.T) {
	lines := []types.CandidateLine{
		{Timestamp: 2.0, Text: "你好"},
		{Timestamp: 1.0, Text: "再见"},
	}
	p, registry := newTestPipeline(t,
		&fakeExtractor{lines: lines},
		&fakeTranslator{fn: func(text string) (string, error) { return "ja:" + text, nil }},
	)
	job := registry.Add("job3", "v.mp4", "v.mp4")

	p.Process(job)

	path, _ := registry.Result("job3")
	records := readResult(t, path)
	if len(records) != 2 {
		t.Fatalf("persisted %d records, want 2", len(records))
	}
	if records[0].Timestamp != 1.0 || records[0].SourceText != "再见" {
		t.Errorf("first record = %+v, want (1.0, 再见)", records[0])
	}
	if records[1].Timestamp != 2.0 || records[1].SourceText != "你好" {
		t.Errorf("second record = %+v, want (2.0, 你好)", records[1])
	}
	if records[0].TranslatedText != "ja:再见" {
		t.Errorf("translated text = %q, want %q", records[0].TranslatedText, "ja:再见")
	}
}

func TestProcessStableSortForEqualTimestamps(t *testing.T) {
	lines := []types.CandidateLine{
		{Timestamp: 1.0, Text: "上排字幕"},
		{Timestamp: 1.0, Text: "下排字幕"},
	}
	p, registry := newTestPipeline(t,
		&fakeExtractor{lines: lines},
		&fakeTranslator{fn: func(text string) (string, error) { return text, nil }},
	)
	job := registry.Add("job4", "v.mp4", "v.mp4")

	p.Process(job)

	path, _ := registry.Result("job4")
	records := readResult(t, path)
	if records[0].SourceText != "上排字幕" || records[1].SourceText != "下排字幕" {
		t.Errorf("equal-timestamp order not preserved: %+v", records)
	}
}

func TestProcessProgressIsMonotone(t *testing.T) {
	lines := make([]types.CandidateLine, 10)
	for i := range lines {
		lines[i] = types.CandidateLine{Timestamp: float64(i), Text: "行"}
	}

	registry := NewRegistry()
	var seen []float64
	tr := &fakeTranslator{fn: func(text string) (string, error) {
		seen = append(seen, registry.Snapshot("job5").Progress)
		return text, nil
	}}
	store := storage.NewLocalStorage(t.TempDir())
	p := NewPipeline(registry, &fakeExtractor{lines: lines}, tr, store, nil, nil, "test")
	job := registry.Add("job5", "v.mp4", "v.mp4")

	p.Process(job)

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress decreased mid-run: %v", seen)
		}
	}
	if got := registry.Snapshot("job5").Progress; got != 1.0 {
		t.Errorf("final progress = %f, want exactly 1.0", got)
	}
}

func TestSnapshotUnknownJob(t *testing.T) {
	registry := NewRegistry()
	snap := registry.Snapshot("no-such-job")
	if snap.Status != types.StatusUnknown {
		t.Errorf("status = %q, want unknown", snap.Status)
	}
	if snap.Progress != 0 || snap.LastError != "" {
		t.Errorf("unknown snapshot not zero-valued: %+v", snap)
	}
}

func TestEvictTerminalKeepsActiveJobs(t *testing.T) {
	registry := NewRegistry()
	registry.Add("done", "a.mp4", "a.mp4")
	registry.MarkDone("done", "a.json")
	registry.Add("running", "b.mp4", "b.mp4")
	registry.MarkRunning("running")

	time.Sleep(5 * time.Millisecond)
	evicted := registry.EvictTerminal(time.Millisecond)

	if evicted != 1 {
		t.Fatalf("evicted %d jobs, want 1", evicted)
	}
	if registry.Snapshot("done").Status != types.StatusUnknown {
		t.Error("terminal job still present after eviction")
	}
	if registry.Snapshot("running").Status != types.StatusRunning {
		t.Error("running job was evicted")
	}
}
