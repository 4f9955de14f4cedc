package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/docuvault/constants"
)

// Config holds extraction thresholds.
type Config struct {
	ConfidenceThreshold float32 // fallback trigger; default 0.5
	DPI                 int     // rasterization DPI for paginated documents, default 300
}

// Result is the outcome of one extraction. Err is populated instead of
// returning an error; the extractor never fails past its boundary.
type Result struct {
	Text         string
	Confidence   float32
	Pages        int
	Lines        int
	Preprocessed bool
	Duration     time.Duration
	Err          string
}

// Extractor runs the recognition pipeline with a confidence-driven
// fallback: preprocess then recognize, and if the run scores below the
// threshold, recognize the untouched original and keep the better run.
type Extractor struct {
	cfg      Config
	engine   Engine
	prep     *Preprocessor
	splitter *Splitter
	logger   *slog.Logger
}

func NewExtractor(cfg Config, engine Engine, prep *Preprocessor, splitter *Splitter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.5
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, engine: engine, prep: prep, splitter: splitter, logger: logger}
}

// Extract recognizes text from an image or paginated document.
func (e *Extractor) Extract(ctx context.Context, path string) Result {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		e.logger.Error("ocr.extract.missing_file", "path", path, "error", err)
		return Result{Duration: time.Since(start), Err: fmt.Sprintf("file not found: %v", err)}
	}

	var res Result
	if constants.MapPathToFormat(path) == constants.PDF {
		res = e.extractPaginated(ctx, path)
	} else {
		res = e.extractWithFallback(ctx, path)
	}
	res.Duration = time.Since(start)

	if res.Err != "" {
		e.logger.Error("ocr.extract.failed", "path", path, "error", res.Err)
	} else {
		e.logger.Info("ocr.extract.ok",
			"path", path,
			"lines", res.Lines,
			"pages", res.Pages,
			"confidence", res.Confidence,
			"preprocessed", res.Preprocessed,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
	return res
}

// extractWithFallback runs the preprocessed pass first and retries on the
// original image when confidence lands under the threshold. Ties keep the
// preprocessed result. An engine failure on the first pass counts as an
// empty zero-confidence run, so the untouched image still gets its attempt.
func (e *Extractor) extractWithFallback(ctx context.Context, path string) Result {
	first, err := e.recognizePreprocessed(ctx, path)
	if err != nil {
		e.logger.Warn("ocr.extract.first_pass_failed", "path", path, "error", err)
		first = Result{Err: err.Error()}
	}

	if first.Err == "" && first.Confidence >= e.cfg.ConfidenceThreshold {
		return first
	}

	if first.Err == "" {
		e.logger.Warn("ocr.extract.low_confidence",
			"path", path,
			"confidence", first.Confidence,
			"threshold", e.cfg.ConfidenceThreshold,
		)
	}

	second, err := e.recognizeOne(ctx, path, false)
	if err != nil {
		// both passes down, or the fallback alone: the first result stands
		e.logger.Warn("ocr.extract.fallback_failed", "path", path, "error", err)
		return first
	}
	if first.Err != "" || second.Confidence > first.Confidence {
		e.logger.Info("ocr.extract.fallback_improved", "path", path, "confidence", second.Confidence)
		return second
	}
	return first
}

// recognizePreprocessed preprocesses into a temp file and recognizes it.
// A preprocessing failure is non-fatal: the original image is used.
func (e *Extractor) recognizePreprocessed(ctx context.Context, path string) (Result, error) {
	input := path
	preprocessed := false
	if e.prep != nil {
		tmp, cleanup, err := e.prep.Preprocess(ctx, path)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			e.logger.Warn("ocr.preprocess.failed", "path", path, "error", err)
		} else {
			input = tmp
			preprocessed = true
		}
	}
	return e.recognizeOne(ctx, input, preprocessed)
}

func (e *Extractor) recognizeOne(ctx context.Context, imagePath string, preprocessed bool) (Result, error) {
	lines, err := e.engine.Recognize(ctx, imagePath)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:         JoinText(lines),
		Confidence:   MeanConfidence(lines),
		Pages:        1,
		Lines:        len(lines),
		Preprocessed: preprocessed,
	}, nil
}

// extractPaginated rasterizes each page and recognizes them in order.
// Page texts join under explicit page markers; the aggregate confidence
// is the mean of per-page confidences.
func (e *Extractor) extractPaginated(ctx context.Context, path string) Result {
	if e.splitter == nil {
		return Result{Err: "no page-rendering backend configured"}
	}

	images, err := e.splitter.ConvertToImages(ctx, path, e.cfg.DPI)
	if err != nil {
		return Result{Err: fmt.Sprintf("convert pages: %v", err)}
	}
	defer e.splitter.Cleanup(images)

	var b strings.Builder
	var confSum float64
	var confN, totalLines int

	for i, img := range images {
		lines, err := e.engine.Recognize(ctx, img)
		if err != nil {
			return Result{Pages: len(images), Err: fmt.Sprintf("page %d: %v", i+1, err)}
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n", i+1)
		b.WriteString(JoinText(lines))
		b.WriteByte('\n')
		confSum += float64(MeanConfidence(lines))
		confN++
		totalLines += len(lines)
	}

	var conf float32
	if confN > 0 {
		conf = float32(confSum / float64(confN))
	}
	return Result{
		Text:       strings.TrimSpace(b.String()),
		Confidence: conf,
		Pages:      len(images),
		Lines:      totalLines,
	}
}
