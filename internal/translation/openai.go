package translation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	BaseURL        string
	APIKey         string
	Model          string
	SourceLanguage string
	TargetLanguage string
	httpClient     *http.Client
}

// NewClient builds a chat-completions translator.
func NewClient(baseURL, apiKey, model, sourceLang, targetLang string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL:        strings.TrimSuffix(baseURL, "/"),
		APIKey:         apiKey,
		Model:          model,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Translate sends one subtitle line to the model. Empty input
// translates to empty output without a network call.
func (c *Client) Translate(text, contextLabel string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	system := fmt.Sprintf(
		"You are a professional subtitle translator. The line below is a %s subtitle from %q. "+
			"Translate it into natural, fluent %s. Output only the translated line, with no quotes, "+
			"no punctuation decoration and no commentary.",
		c.SourceLanguage, contextLabel, c.TargetLanguage)

	payload := map[string]interface{}{
		"model": c.Model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
		"temperature": 0.3,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("translation API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("translation response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("translation API returned no choices")
	}

	result := scrub(parsed.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("translation API returned an empty translation")
	}
	return result, nil
}

// scrub strips the markdown fences and stray quoting models wrap
// answers in.
func scrub(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"")
	s = strings.Trim(s, "'")
	return strings.TrimSpace(s)
}
