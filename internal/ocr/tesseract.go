package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// TesseractConfig configures the tesseract-backed Engine.
type TesseractConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Language    string // default "eng"
	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// TesseractEngine recognizes text by shelling out to tesseract in TSV
// mode, which carries a per-word confidence column.
type TesseractEngine struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg TesseractConfig, runner Runner, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if runner == nil {
		runner = NewRunner(logger)
	}
	return &TesseractEngine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize runs tesseract TSV and groups word rows into lines, keeping
// page/block/paragraph/line order. Line confidence is the mean of its
// word confidences scaled into 0..1.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) ([]Line, error) {
	args := []string{imagePath, "stdout", "-l", e.cfg.Language}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return parseTSV(string(out)), nil
}

// tsv columns: level page block par line word left top width height conf text
const tsvColumns = 12

func parseTSV(tsv string) []Line {
	var lines []Line
	var cur *Line
	var curKey string
	var confSum float64
	var confN int

	flush := func() {
		if cur == nil {
			return
		}
		if confN > 0 {
			cur.Confidence = float32(confSum / float64(confN) / 100.0)
		}
		if strings.TrimSpace(cur.Text) != "" {
			lines = append(lines, *cur)
		}
		cur, curKey, confSum, confN = nil, "", 0, 0
	}

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 || row == "" { // skip header
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColumns {
			continue
		}
		word := cols[11]
		conf, convErr := strconv.ParseFloat(cols[10], 64)
		if convErr != nil || conf < 0 {
			// conf -1 marks structural rows, not recognized words
			continue
		}
		key := strings.Join(cols[1:5], "/") // page/block/par/line
		if cur == nil || key != curKey {
			flush()
			left, _ := strconv.Atoi(cols[6])
			top, _ := strconv.Atoi(cols[7])
			cur = &Line{Box: Box{Left: left, Top: top}}
			curKey = key
		}
		if cur.Text != "" {
			cur.Text += " "
		}
		cur.Text += word
		if w, err := strconv.Atoi(cols[8]); err == nil {
			if grow := (atoiOr(cols[6], 0) + w) - (cur.Box.Left + cur.Box.Width); grow > 0 {
				cur.Box.Width += grow
			}
		}
		if h, err := strconv.Atoi(cols[9]); err == nil && h > cur.Box.Height {
			cur.Box.Height = h
		}
		confSum += conf
		confN++
	}
	flush()
	return lines
}

func atoiOr(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return fallback
}
