package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/llm"
	"github.com/joseph-ayodele/docuvault/internal/query"
	"github.com/joseph-ayodele/docuvault/internal/repository"
)

// askdocs answers a natural-language question over the processed corpus.
func main() {
	var (
		docType = flag.String("type", "", "restrict to documents of this type")
		limit   = flag.Int("limit", 0, "maximum documents to consider (0 uses config)")
		history = flag.Bool("history", false, "print recent query history and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
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
	historyRepo := repository.NewHistoryRepository(store, logger)

	if *history {
		entries, err := historyRepo.List(ctx, 20)
		if err != nil {
			logger.Error("failed to list history", "error", err)
			os.Exit(1)
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Query)
			fmt.Printf("  %s\n\n", e.Response)
		}
		return
	}

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: askdocs [flags] <question>")
		os.Exit(1)
	}

	gen, err := newQueryGenerator(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize llm provider", "error", err)
		os.Exit(1)
	}

	engine := query.NewEngine(docsRepo, historyRepo, gen, cfg.Query.DocumentLimit, logger)
	answer := engine.Query(ctx, question, query.Options{
		DocumentType: *docType,
		Limit:        *limit,
	})

	fmt.Println(answer.Text)
	if answer.ErrorTag != "" {
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n[%s, %d documents, %.2fs]\n",
		answer.Persona, answer.NumDocuments, answer.ExecutionTime.Seconds())
}

func newQueryGenerator(cfg *common.Config, logger *slog.Logger) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return llm.NewAnthropicGenerator(llm.AnthropicConfig{
			APIKey:      cfg.LLM.AnthropicAPIKey,
			Model:       "claude-3-5-sonnet-20241022",
			Temperature: cfg.Query.Temperature,
			MaxTokens:   cfg.Query.MaxTokens,
		}, logger), nil
	case "openai", "":
		return llm.NewOpenAIGenerator(llm.OpenAIConfig{
			APIKey:      cfg.LLM.OpenAIAPIKey,
			Model:       cfg.Query.Model,
			Temperature: cfg.Query.Temperature,
			MaxTokens:   cfg.Query.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
