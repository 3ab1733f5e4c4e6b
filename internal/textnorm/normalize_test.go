package textnorm

import "testing"

func TestNormalizeStripsPunctuation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"「你好，世界。」", "你好世界"},
		{"  hello   world  ", "helloworld"},
		{"『字幕』【测试】", "字幕测试"},
		{"wait—what…", "waitwhat"},
		{"（括号）(brackets)", "括号brackets"},
		{"'quoted' \"text\"", "quotedtext"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeCompatibilityForms(t *testing.T) {
	// Full-width latin folds onto half-width under NFKC.
	if got := Normalize("ＡＢＣ１２３"); got != "ABC123" {
		t.Errorf("full-width fold = %q, want %q", got, "ABC123")
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n", "。。。", "——"} {
		if got := Normalize(in); got != "" {
			t.Errorf("Normalize(%q) = %q, want empty", in, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"「你好，世界。」", "ＡＢＣ", "hello world", "欢迎观看", ""}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
