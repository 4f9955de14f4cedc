package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/ocr"
)

// runocr runs the OCR stage against one file and prints the result,
// for tuning preprocessing and confidence thresholds without touching
// the database.
func main() {
	var (
		path      = flag.String("file", "", "path to an image or PDF (required)")
		threshold = flag.Float64("threshold", 0, "override fallback confidence threshold (0 uses config)")
		showText  = flag.Bool("text", false, "print the recognized text")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *threshold > 0 {
		cfg.OCR.ConfidenceThreshold = float32(*threshold)
	}

	runner := ocr.NewRunner(logger)
	engine := ocr.NewTesseractEngine(ocr.TesseractConfig{
		Language:    cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         6,
	}, runner, logger)
	prep := ocr.NewPreprocessor("", runner, logger)
	splitter := ocr.NewSplitter("", os.TempDir(), cfg.OCR.MaxPages, runner, logger)
	extractor := ocr.NewExtractor(ocr.Config{
		ConfidenceThreshold: cfg.OCR.ConfidenceThreshold,
		DPI:                 cfg.OCR.DPI,
	}, engine, prep, splitter, logger)

	res := extractor.Extract(context.Background(), *path)
	if res.Err != "" {
		fmt.Fprintf(os.Stderr, "OCR failed: %s\n", res.Err)
		os.Exit(1)
	}

	fmt.Printf("Pages:        %d\n", res.Pages)
	fmt.Printf("Lines:        %d\n", res.Lines)
	fmt.Printf("Confidence:   %.3f\n", res.Confidence)
	fmt.Printf("Preprocessed: %v\n", res.Preprocessed)
	fmt.Printf("Duration:     %s\n", res.Duration)
	if *showText {
		fmt.Println("---")
		fmt.Println(res.Text)
	}
}
