package vision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"
)

// HTTPDetector calls a model server that runs the subtitle-region
// detection model.
type HTTPDetector struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPDetector creates a detector client against baseURL.
func NewHTTPDetector(baseURL string, timeout time.Duration) *HTTPDetector {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPDetector{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Detect posts the frame as PNG and returns the detected boxes.
func (d *HTTPDetector) Detect(frame image.Image) ([]Box, error) {
	body, err := postImage(d.client, d.BaseURL+"/detect", frame)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Boxes []Box `json:"boxes"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("detector response: %v", err)
	}
	return parsed.Boxes, nil
}

// HTTPRecognizer calls a model server that runs the OCR model.
type HTTPRecognizer struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPRecognizer creates a recognizer client against baseURL.
func NewHTTPRecognizer(baseURL string, timeout time.Duration) *HTTPRecognizer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPRecognizer{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Recognize posts the crop as PNG and returns recognized text spans
// with confidences.
func (r *HTTPRecognizer) Recognize(region image.Image) ([]Recognition, error) {
	body, err := postImage(r.client, r.BaseURL+"/recognize", region)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Results []Recognition `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("recognizer response: %v", err)
	}
	return parsed.Results, nil
}

func postImage(client *http.Client, url string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %v", err)
	}

	resp, err := client.Post(url, "image/png", &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned %d for %s", resp.StatusCode, url)
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
