package translation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranslateEmptyInputSkipsNetwork(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", "test-model", "Chinese", "Japanese", time.Second)
	got, err := c.Translate("   ", "drama")
	if err != nil || got != "" {
		t.Errorf("Translate(whitespace) = (%q, %v), want empty and nil", got, err)
	}
}

func TestTranslateParsesChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		if len(payload.Messages) != 2 || payload.Messages[1].Content != "你好" {
			t.Errorf("unexpected messages: %+v", payload.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{\"choices\":[{\"message\":{\"content\":\"```\\n\\\"こんにちは\\\"\\n```\"}}]}"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "test-model", "Chinese", "Japanese", time.Second)
	got, err := c.Translate("你好", "drama")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "こんにちは" {
		t.Errorf("Translate = %q, want scrubbed %q", got, "こんにちは")
	}
}

func TestTranslateErrorPaths(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"upstream error", `rate limited`, http.StatusTooManyRequests},
		{"no choices", `{"choices":[]}`, http.StatusOK},
		{"empty content", `{"choices":[{"message":{"content":"  "}}]}`, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.code)
				w.Write([]byte(c.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "", "m", "Chinese", "Japanese", time.Second)
			if _, err := client.Translate("你好", "drama"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
