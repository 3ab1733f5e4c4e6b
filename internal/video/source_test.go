package video

import "testing"

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001.0},
		{"25", 25},
		{"0/0", 0},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := parseFrameRate(c.in); got != c.want {
			t.Errorf("parseFrameRate(%q) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	for _, name := range []string{"a.mp4", "b.MOV", "c.mkv", "d.webm"} {
		if !ValidateFormat(name) {
			t.Errorf("ValidateFormat(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"a.mp3", "b.txt", "c"} {
		if ValidateFormat(name) {
			t.Errorf("ValidateFormat(%q) = true, want false", name)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open("testdata/missing.mp4"); err == nil {
		t.Error("Open succeeded for a missing file")
	}
}
