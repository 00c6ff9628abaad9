// Package media validates and shrinks uploaded images. Dimensions are read
// in process so corrupt uploads are rejected before any subprocess runs; the
// actual resize is delegated to an ffmpeg binary on the host.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os/exec"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// Certificate signatures and course thumbnails render small; full HD is
// already generous.
const DefaultMaxDimension = 1920

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Resized     bool
}

type Processor interface {
	Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error)
}

type FFMPEGProcessor struct {
	path         string
	maxDimension int
}

func NewFFMPEGProcessor(binaryPath string, maxDimension int) *FFMPEGProcessor {
	path := strings.TrimSpace(binaryPath)
	if path == "" {
		path = "ffmpeg"
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &FFMPEGProcessor{path: path, maxDimension: maxDimension}
}

// Process returns the upload unchanged when it already fits within the
// requested dimension, otherwise a lanczos-scaled copy in the same format.
func (p *FFMPEGProcessor) Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	contentType := sniffContentType(upload.ContentType, upload.FileName)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("media: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}

	targetMax := maxDimension
	if targetMax <= 0 {
		targetMax = p.maxDimension
	}
	if cfg.Width <= targetMax && cfg.Height <= targetMax {
		return &Result{Bytes: data, ContentType: contentType, Resized: false}, nil
	}

	width, height := fitWithin(cfg.Width, cfg.Height, targetMax)
	scaled, err := p.scale(ctx, data, contentType, width, height)
	if err != nil {
		return nil, err
	}
	return &Result{Bytes: scaled, ContentType: contentType, Resized: true}, nil
}

// fitWithin shrinks width x height proportionally so the longer side equals
// maxDim. ffmpeg rejects degenerate frames, so either side is at least 2.
func fitWithin(width, height, maxDim int) (int, int) {
	longer, shorter := width, height
	if height > width {
		longer, shorter = height, width
	}
	scaledShorter := int(math.Round(float64(shorter) * float64(maxDim) / float64(longer)))
	if scaledShorter < 2 {
		scaledShorter = 2
	}
	if width >= height {
		return maxDim, scaledShorter
	}
	return scaledShorter, maxDim
}

func (p *FFMPEGProcessor) scale(ctx context.Context, data []byte, contentType string, width, height int) ([]byte, error) {
	var codecArgs []string
	switch contentType {
	case "image/jpeg":
		codecArgs = []string{"-c:v", "mjpeg", "-q:v", "3"}
	case "image/png":
		codecArgs = []string{"-c:v", "png", "-compression_level", "4"}
	case "image/webp":
		codecArgs = []string{"-c:v", "libwebp", "-quality", "85"}
	default:
		return nil, fmt.Errorf("media: unsupported content type %s", contentType)
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vf", fmt.Sprintf("scale=%d:%d:flags=lanczos", width, height),
		"-frames:v", "1",
		"-f", "image2",
	}
	args = append(args, codecArgs...)
	args = append(args, "pipe:1")

	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg: %v: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg: produced empty output")
	}
	return stdout.Bytes(), nil
}

// sniffContentType trusts the declared type when present and falls back to
// the file extension. PNG is the default; it is what signature uploads are.
func sniffContentType(value, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(value))
	switch ct {
	case "image/jpg":
		return "image/jpeg"
	case "image/jpeg", "image/png", "image/webp":
		return ct
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return "image/png"
}
