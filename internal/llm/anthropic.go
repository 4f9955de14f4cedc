package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicConfig configures the Anthropic-backed Generator.
type AnthropicConfig struct {
	APIKey      string // if empty, falls back to env ANTHROPIC_API_KEY
	Model       string // e.g., "claude-3-5-sonnet-20241022"
	Temperature float32
	MaxTokens   int
}

// AnthropicGenerator calls the Messages API through the official SDK.
type AnthropicGenerator struct {
	cfg    AnthropicConfig
	client anthropic.Client
	logger *slog.Logger
}

func NewAnthropicGenerator(cfg AnthropicConfig, logger *slog.Logger) *AnthropicGenerator {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicGenerator{
		cfg:    cfg,
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		logger: logger,
	}
}

func (g *AnthropicGenerator) Model() string { return g.cfg.Model }

func (g *AnthropicGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: int64(g.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if g.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(g.cfg.Temperature))
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		g.logger.Error("llm.anthropic.call_error", "model", g.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("anthropic call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from anthropic")
	}

	g.logger.Info("llm.anthropic.ok",
		"model", g.cfg.Model,
		"content_bytes", text.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text.String(), nil
}
