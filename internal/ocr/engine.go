package ocr

import (
	"context"
	"strings"
)

// Box is the bounding region of one recognized text line, in pixels.
type Box struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Line is one recognized text unit with its per-line confidence (0..1).
type Line struct {
	Box        Box
	Text       string
	Confidence float32
}

// Engine is the text-recognition boundary: an image path in, an ordered
// sequence of recognized lines out.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) ([]Line, error)
}

// MeanConfidence is the average of per-line confidences, 0.0 when no
// lines were detected.
func MeanConfidence(lines []Line) float32 {
	if len(lines) == 0 {
		return 0.0
	}
	var sum float64
	for _, ln := range lines {
		sum += float64(ln.Confidence)
	}
	return float32(sum / float64(len(lines)))
}

// JoinText concatenates line texts with newlines.
func JoinText(lines []Line) string {
	var b strings.Builder
	for i, ln := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ln.Text)
	}
	return b.String()
}
