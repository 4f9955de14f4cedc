package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joseph-ayodele/docuvault/constants"
	"github.com/joseph-ayodele/docuvault/internal/async"
	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/export"
	"github.com/joseph-ayodele/docuvault/internal/ingest"
	"github.com/joseph-ayodele/docuvault/internal/llm"
	"github.com/joseph-ayodele/docuvault/internal/ocr"
	processor "github.com/joseph-ayodele/docuvault/internal/pipeline"
	"github.com/joseph-ayodele/docuvault/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory to process documents from (required)")
		out     = flag.String("out", "", "output file path (optional, defaults to exports dir)")
		format  = flag.String("format", "xlsx", "export format: xlsx or json")
		docType = flag.String("type", "", "export only documents of this type")
		ocrText = flag.Bool("ocr-text", false, "include raw OCR text in JSON export")
		watch   = flag.Bool("watch", false, "keep watching the directory and process files as they arrive")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *format != "xlsx" && *format != "json" {
		printError("Error: --format must be xlsx or json\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.SetupDirectories(); err != nil {
		logger.Error("failed to create storage directories", "error", err)
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(cfg.Storage.ExportsDir, "documents."+*format)
	}

	store, err := repository.Open(ctx, cfg.Storage.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	docsRepo := repository.NewDocumentRepository(store, logger)

	gen, err := newGenerator(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize llm provider", "error", err)
		os.Exit(1)
	}
	fields := llm.NewExtractor(gen, cfg.LLM.MaxRetries, logger)

	proc := processor.NewProcessor(docsRepo, newTextExtractor(cfg, logger), fields, cfg.Storage, cfg.OCR, logger)

	if *watch {
		runWatch(ctx, proc, *dir, cfg, logger)
		return
	}

	paths, err := collectFiles(*dir, cfg.OCR.Extensions)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "files", len(paths))

	result := proc.ProcessBatch(ctx, paths)

	exportService := export.NewService(docsRepo, logger)
	filter := repository.ListFilter{DocumentType: *docType}

	var data []byte
	if *format == "json" {
		data, err = exportService.ExportJSON(ctx, filter, *ocrText)
	} else {
		data, err = exportService.ExportXLSX(ctx, filter)
	}
	if err != nil {
		logger.Error("failed to export documents", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files attempted: %d\n", result.Attempted)
	fmt.Printf("- Files processed: %d\n", result.Succeeded)
	fmt.Printf("- Failures: %d\n", len(result.Failed))
	fmt.Printf("- Output: %s\n", *out)
}

// runWatch processes files as they land in dir until interrupted.
func runWatch(ctx context.Context, proc *processor.Processor, dir string, cfg *common.Config, logger *slog.Logger) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := async.NewQueue(func(ctx context.Context, path string) error {
		doc, err := proc.Ingest(ctx, path)
		if err != nil {
			return err
		}
		return proc.ProcessDocument(ctx, doc.ID)
	}, logger)

	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		Extensions:  cfg.OCR.Extensions,
		InitialScan: true,
		Debounce:    2 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "dir", dir, "error", err)
		os.Exit(1)
	}

	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			queue.Enqueue(async.Job{Path: p})
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	queue.Shutdown(drainCtx)
}

func newGenerator(cfg *common.Config, logger *slog.Logger) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return llm.NewAnthropicGenerator(llm.AnthropicConfig{
			APIKey:      cfg.LLM.AnthropicAPIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}, logger), nil
	case "openai", "":
		return llm.NewOpenAIGenerator(llm.OpenAIConfig{
			APIKey:      cfg.LLM.OpenAIAPIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func newTextExtractor(cfg *common.Config, logger *slog.Logger) *ocr.Extractor {
	runner := ocr.NewRunner(logger)
	engine := ocr.NewTesseractEngine(ocr.TesseractConfig{
		Language:    cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         6,
	}, runner, logger)
	prep := ocr.NewPreprocessor("", runner, logger)
	splitter := ocr.NewSplitter("", cfg.Storage.CacheDir, cfg.OCR.MaxPages, runner, logger)
	return ocr.NewExtractor(ocr.Config{
		ConfidenceThreshold: cfg.OCR.ConfidenceThreshold,
		DPI:                 cfg.OCR.DPI,
	}, engine, prep, splitter, logger)
}

func collectFiles(dir string, extensions []string) ([]string, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		allowed[constants.NormalizeExt(e)] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(entry.Name()))
		if !allowed[ext] {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
