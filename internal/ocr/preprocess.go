package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Preprocessor normalizes a page image before recognition:
// grayscale -> denoise -> adaptive threshold, via ImageMagick.
type Preprocessor struct {
	Magick string // binary name or absolute path; if empty -> "magick"
	runner Runner
	logger *slog.Logger
}

func NewPreprocessor(magick string, runner Runner, logger *slog.Logger) *Preprocessor {
	if magick == "" {
		magick = "magick"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{Magick: magick, runner: runner, logger: logger}
}

// Preprocess writes the normalized image to a temp file and returns its
// path together with a cleanup func. Callers own the cleanup.
func (p *Preprocessor) Preprocess(ctx context.Context, imagePath string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "dv-prep-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.logger.Warn("ocr.preprocess.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}
	out := filepath.Join(tmpDir, "prep-"+filepath.Base(imagePath))

	// magick <in> -colorspace Gray -enhance -lat 25x25+4% <out>
	if _, errb, err2 := p.runner.Run(ctx, p.Magick, imagePath,
		"-colorspace", "Gray",
		"-enhance",
		"-lat", "25x25+4%",
		out,
	); err2 != nil {
		return "", cleanup, fmt.Errorf("magick preprocess: %w (stderr: %s)", err2, truncate(string(errb), 512))
	}

	if _, statErr := os.Stat(out); statErr != nil {
		return "", cleanup, fmt.Errorf("preprocess produced no output: %v", statErr)
	}
	return out, cleanup, nil
}
