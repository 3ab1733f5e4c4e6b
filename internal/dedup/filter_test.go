package dedup

import "testing"

func TestFreshFilterAcceptsFirstLine(t *testing.T) {
	f := New(DefaultConfig())
	if !f.IsNew("欢迎观看") {
		t.Error("fresh filter rejected a non-empty line")
	}
	if f.Last() != "欢迎观看" {
		t.Errorf("Last() = %q, want %q", f.Last(), "欢迎观看")
	}
}

func TestFilterRejectsWhitespaceOnly(t *testing.T) {
	f := New(DefaultConfig())
	for _, in := range []string{"", "   ", "\t", "。。。"} {
		if f.IsNew(in) {
			t.Errorf("IsNew(%q) = true, want false", in)
		}
	}
	// Noise must not occupy the lookback slot.
	if !f.IsNew("你好") {
		t.Error("filter state was mutated by whitespace-only input")
	}
}

func TestFilterSuppressionScenario(t *testing.T) {
	// The third line differs from the first by one character; only the
	// first and fourth are genuinely new.
	inputs := []string{"欢迎观看", "欢迎观看", "欢迎现看", "再见"}
	want := []bool{true, false, false, true}

	f := New(DefaultConfig())
	for i, in := range inputs {
		if got := f.IsNew(in); got != want[i] {
			t.Errorf("IsNew(%q) = %v, want %v", in, got, want[i])
		}
	}
}

func TestFilterSuppressionKeepsFirstSeenLine(t *testing.T) {
	f := New(DefaultConfig())
	f.IsNew("欢迎观看本期节目")
	if f.IsNew("欢迎观看本期节自") { // noisy variant, suppressed
		t.Fatal("noisy variant was accepted")
	}
	if f.Last() != "欢迎观看本期节目" {
		t.Errorf("suppression replaced the stored line: Last() = %q", f.Last())
	}
	// The original, fed again, still compares against itself.
	if f.IsNew("欢迎观看本期节目") {
		t.Error("identical repeat accepted after a suppressed variant")
	}
}

func TestFilterAcceptsUnrelatedLine(t *testing.T) {
	f := New(DefaultConfig())
	f.IsNew("欢迎观看")
	if !f.IsNew("我不知道") {
		t.Error("unrelated line of similar length was suppressed")
	}
}

func TestFilterIgnoresPunctuationVariants(t *testing.T) {
	f := New(DefaultConfig())
	f.IsNew("你好，世界")
	if f.IsNew("「你好世界。」") {
		t.Error("punctuation-only variant treated as new")
	}
}

func TestFilterSingleLookbackWindow(t *testing.T) {
	// A caption that reappears after another caption intervened is new
	// again: only the immediately prior accepted line is compared.
	f := New(DefaultConfig())
	if !f.IsNew("第一句字幕内容") {
		t.Fatal("first line rejected")
	}
	if !f.IsNew("完全不同的一句") {
		t.Fatal("second line rejected")
	}
	if !f.IsNew("第一句字幕内容") {
		t.Error("reappearing caption suppressed beyond the single-line window")
	}
}

func TestFilterEditToleranceScalesWithLength(t *testing.T) {
	f := New(DefaultConfig())
	long := "这是一条足够长的字幕用来验证阈值换算逻辑" // 20 runes -> k = 2
	f.IsNew(long)
	twoEdits := "那是一条足够长的字幕用来验证阈值换算逻轮"
	if f.IsNew(twoEdits) {
		t.Error("two edits in twenty characters should be within tolerance")
	}
}
