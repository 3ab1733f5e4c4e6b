package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/subtrans/subtrans/internal/types"
)

func TestSaveTranscriptEmptyRun(t *testing.T) {
	ls := NewLocalStorage(t.TempDir())

	path, err := ls.SaveTranscript("job1", nil)
	if err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty run persisted as %q, want []", string(data))
	}
}

func TestSaveTranscriptRoundTrip(t *testing.T) {
	ls := NewLocalStorage(t.TempDir())
	records := []types.TranscriptRecord{
		{Timestamp: 1.0, SourceText: "再见", TranslatedText: "さようなら"},
		{Timestamp: 2.0, SourceText: "你好", TranslatedText: "こんにちは"},
	}

	path, err := ls.SaveTranscript("job2", records)
	if err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	got, err := ReadTranscript(path)
	if err != nil {
		t.Fatalf("ReadTranscript failed: %v", err)
	}
	if len(got) != 2 || got[0].SourceText != "再见" || got[1].TranslatedText != "こんにちは" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := ReadTranscript(path + ".missing"); err == nil {
		t.Error("ReadTranscript succeeded for a missing file")
	}
}

func TestRenderText(t *testing.T) {
	out := RenderText([]types.TranscriptRecord{
		{Timestamp: 12.5, SourceText: "你好", TranslatedText: "こんにちは"},
	})
	if !strings.Contains(out, "你好") || !strings.Contains(out, "こんにちは") {
		t.Errorf("rendering missing text: %q", out)
	}
	if !strings.Contains(out, "12.50s") {
		t.Errorf("rendering missing timestamp: %q", out)
	}
}
