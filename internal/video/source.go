// Package video decodes uploaded videos into frames by shelling out to
// ffmpeg, the same way the audio path of this kind of service normally
// shells out for media conversion.
package video

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Source yields decoded frames in presentation order and exposes the
// playback clock of the most recently yielded frame.
type Source interface {
	// Next returns the next frame, or ok=false when the stream is
	// exhausted.
	Next() (*image.RGBA, bool)
	// PositionSeconds is the playback position of the frame most
	// recently returned by Next.
	PositionSeconds() float64
	Close() error
}

// FFmpegSource streams raw RGBA frames from an ffmpeg pipe.
type FFmpegSource struct {
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	reader     *bufio.Reader
	width      int
	height     int
	fps        float64
	frameIndex int
}

// Open probes path with ffprobe and starts an ffmpeg rawvideo pipe.
// It fails before any frame is produced when the file is missing or
// has no decodable video stream.
func Open(path string) (*FFmpegSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open video: %v", err)
	}

	width, height, fps, err := probe(path)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start: %v", err)
	}

	return &FFmpegSource{
		cmd:        cmd,
		stdout:     stdout,
		reader:     bufio.NewReaderSize(stdout, width*4),
		width:      width,
		height:     height,
		fps:        fps,
		frameIndex: -1,
	}, nil
}

// probe reads the first video stream's dimensions and frame rate.
func probe(path string) (width, height int, fps float64, err error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe failed: %v", err)
	}

	var parsed struct {
		Streams []struct {
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe output: %v", err)
	}
	if len(parsed.Streams) == 0 {
		return 0, 0, 0, fmt.Errorf("no video stream in %s", path)
	}

	s := parsed.Streams[0]
	fps = parseFrameRate(s.AvgFrameRate)
	if s.Width <= 0 || s.Height <= 0 || fps <= 0 {
		return 0, 0, 0, fmt.Errorf("unusable video stream in %s (%dx%d @ %q)",
			path, s.Width, s.Height, s.AvgFrameRate)
	}
	return s.Width, s.Height, fps, nil
}

// parseFrameRate converts ffprobe's "num/den" rational to a float.
func parseFrameRate(r string) float64 {
	parts := strings.SplitN(r, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

// Next reads one full frame from the pipe.
func (s *FFmpegSource) Next() (*image.RGBA, bool) {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if _, err := io.ReadFull(s.reader, img.Pix); err != nil {
		return nil, false
	}
	s.frameIndex++
	return img, true
}

// PositionSeconds derives the playback clock from the current frame's
// position in the stream.
func (s *FFmpegSource) PositionSeconds() float64 {
	if s.frameIndex < 0 {
		return 0
	}
	return float64(s.frameIndex) / s.fps
}

func (s *FFmpegSource) Close() error {
	s.stdout.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	return nil
}

// ValidateFormat checks if the file extension is a supported video
// container.
func ValidateFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supported := []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".m4v", ".ts"}
	for _, s := range supported {
		if ext == s {
			return true
		}
	}
	return false
}
