// Package vision holds the subtitle-region detector and text
// recognizer contracts plus the crop preprocessing applied between
// them. Both capabilities run as external model servers and are
// invoked over HTTP; their internals are out of scope here.
package vision

import "image"

// Box is an axis-aligned bounding box in pixel coordinates, with X2/Y2
// exclusive.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Expand grows the box by margin pixels on each side, clamped to the
// frame bounds, so glyph edges are not clipped by a tight detection.
func (b Box) Expand(margin, width, height int) Box {
	out := Box{
		X1: b.X1 - margin,
		Y1: b.Y1 - margin,
		X2: b.X2 + margin,
		Y2: b.Y2 + margin,
	}
	if out.X1 < 0 {
		out.X1 = 0
	}
	if out.Y1 < 0 {
		out.Y1 = 0
	}
	if out.X2 > width {
		out.X2 = width
	}
	if out.Y2 > height {
		out.Y2 = height
	}
	return out
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Recognition is a single piece of recognized text with its model
// confidence in [0,1].
type Recognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Detector locates candidate subtitle regions in a frame. A frame with
// no subtitles yields an empty slice, not an error.
type Detector interface {
	Detect(frame image.Image) ([]Box, error)
}

// Recognizer reads text out of a preprocessed crop. May return zero or
// more results per crop.
type Recognizer interface {
	Recognize(region image.Image) ([]Recognition, error)
}
