// Package dedup suppresses frame-to-frame re-detections of the same
// on-screen caption. The same subtitle line is recognized on many
// consecutive sampled frames, usually with OCR noise, so the filter
// compares each new line against the last accepted one and drops
// anything that looks like a repeat.
package dedup

import (
	"strings"
	"unicode/utf8"

	"github.com/subtrans/subtrans/internal/similarity"
	"github.com/subtrans/subtrans/internal/textnorm"
)

// Config holds the duplicate-classifier thresholds. A new line is
// suppressed when ANY measure fires: the classifier deliberately
// over-suppresses repeats, since re-detection is the dominant noise
// source.
type Config struct {
	// RatioThreshold suppresses when the sequence ratio is at least
	// this value. Default 0.90.
	RatioThreshold float64 `yaml:"ratio_threshold"`
	// JaccardThreshold suppresses when the bigram Jaccard overlap is at
	// least this value. Default 0.75.
	JaccardThreshold float64 `yaml:"jaccard_threshold"`
	// EditDivisor tolerates roughly one character error per this many
	// characters of line length, with a floor of one tolerated error.
	// Default 10.
	EditDivisor int `yaml:"edit_divisor"`
}

// DefaultConfig returns the tuned thresholds.
func DefaultConfig() Config {
	return Config{
		RatioThreshold:   0.90,
		JaccardThreshold: 0.75,
		EditDivisor:      10,
	}
}

// Filter holds the single most recently accepted line of one
// extraction run. One instance per run; never shared and never reset
// mid-video.
type Filter struct {
	cfg      Config
	lastRaw  string
	lastNorm string
}

// New returns a fresh filter. Zero-valued config fields fall back to
// the defaults.
func New(cfg Config) *Filter {
	def := DefaultConfig()
	if cfg.RatioThreshold <= 0 {
		cfg.RatioThreshold = def.RatioThreshold
	}
	if cfg.JaccardThreshold <= 0 {
		cfg.JaccardThreshold = def.JaccardThreshold
	}
	if cfg.EditDivisor <= 0 {
		cfg.EditDivisor = def.EditDivisor
	}
	return &Filter{cfg: cfg}
}

// IsNew reports whether text is a genuinely new subtitle event rather
// than a repeat of the last accepted line. Whitespace-only input is
// never accepted. On suppression the stored line is NOT replaced: it
// stays the first-seen instance of the repeated caption, not the most
// recent noisy variant.
func (f *Filter) IsNew(text string) bool {
	raw := strings.TrimSpace(text)
	normed := textnorm.Normalize(raw)
	if normed == "" {
		return false
	}
	if f.lastNorm == "" {
		f.lastRaw, f.lastNorm = raw, normed
		return true
	}

	ratio := similarity.SequenceRatio(normed, f.lastNorm)

	l := utf8.RuneCountInString(normed)
	if n := utf8.RuneCountInString(f.lastNorm); n > l {
		l = n
	}
	k := (l + f.cfg.EditDivisor - 1) / f.cfg.EditDivisor
	if k < 1 {
		k = 1
	}
	dist := similarity.EditDistance(normed, f.lastNorm)

	jac := similarity.BigramJaccard(normed, f.lastNorm)

	if ratio >= f.cfg.RatioThreshold || dist <= k || jac >= f.cfg.JaccardThreshold {
		return false
	}

	f.lastRaw, f.lastNorm = raw, normed
	return true
}

// Last returns the raw form of the last accepted line, or "" when
// nothing has been accepted yet.
func (f *Filter) Last() string {
	return f.lastRaw
}
