package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Splitter rasterizes each page of a paginated document to an image so
// the Engine can consume it page by page. It never cleans up after
// itself; callers request Cleanup explicitly once OCR is done.
type Splitter struct {
	Pdftoppm   string // binary name or absolute path; if empty -> "pdftoppm"
	ScratchDir string // parent for per-document scratch dirs; "" -> os temp
	MaxPages   int    // 0 = no limit

	runner Runner
	logger *slog.Logger
}

func NewSplitter(pdftoppm, scratchDir string, maxPages int, runner Runner, logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	if runner == nil {
		runner = NewRunner(logger)
	}
	return &Splitter{Pdftoppm: pdftoppm, ScratchDir: scratchDir, MaxPages: maxPages, runner: runner, logger: logger}
}

// ConvertToImages renders every page of the document at the given DPI to
// an individual PNG, page order preserved in the zero-padded filenames.
// A document that renders zero pages is an error, never a silent empty
// result.
func (s *Splitter) ConvertToImages(ctx context.Context, documentPath string, dpi int) ([]string, error) {
	if dpi <= 0 {
		dpi = 300
	}

	// Probe the page count first so corrupt or empty documents fail
	// before we shell out to the rasterizer.
	pageCount, err := api.PageCountFile(documentPath)
	if err != nil {
		return nil, fmt.Errorf("read page count: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("document has no pages: %s", documentPath)
	}

	scratch, err := os.MkdirTemp(s.ScratchDir, "dv-pages-*")
	if err != nil {
		return nil, err
	}

	prefix := filepath.Join(scratch, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <scratch/page>
	_, errb, err := s.runner.Run(ctx, s.Pdftoppm, "-r", strconv.Itoa(dpi), "-png", documentPath, prefix)
	if err != nil {
		_ = os.RemoveAll(scratch)
		return nil, fmt.Errorf("pdftoppm: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	// pdftoppm zero-pads page numbers, so a string sort preserves order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if s.MaxPages > 0 && len(matches) > s.MaxPages {
		for _, extra := range matches[s.MaxPages:] {
			_ = os.Remove(extra)
		}
		matches = matches[:s.MaxPages]
	}
	if len(matches) == 0 {
		_ = os.RemoveAll(scratch)
		return nil, fmt.Errorf("rendering produced no page images for %s", documentPath)
	}

	s.logger.Debug("pagesplit.rendered", "path", documentPath, "pages", len(matches), "dpi", dpi)
	return matches, nil
}

// Cleanup removes rendered page images and their scratch dir. Failures
// are logged, not returned.
func (s *Splitter) Cleanup(imagePaths []string) {
	dirs := map[string]struct{}{}
	for _, p := range imagePaths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("pagesplit.cleanup_failed", "path", p, "error", err)
		}
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := os.Remove(d); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("pagesplit.cleanup_failed", "path", d, "error", err)
		}
	}
}
