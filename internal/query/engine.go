package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docuvault/internal/entity"
	"github.com/joseph-ayodele/docuvault/internal/llm"
	"github.com/joseph-ayodele/docuvault/internal/repository"
)

// Options narrows which documents a question runs against.
type Options struct {
	DocumentType string
	Limit        int
}

// Answer is the outcome of one question.
type Answer struct {
	Text          string        `json:"answer"`
	Persona       Persona       `json:"query_type"`
	DocumentIDs   []uuid.UUID   `json:"document_ids"`
	NumDocuments  int           `json:"num_documents"`
	ExecutionTime time.Duration `json:"execution_time"`
	ErrorTag      string        `json:"error,omitempty"`
}

// Engine answers natural-language questions over the completed corpus,
// switching system prompts by detected persona.
type Engine struct {
	docs    repository.DocumentRepository
	history repository.HistoryRepository
	gen     llm.Generator
	limit   int
	logger  *slog.Logger
}

func NewEngine(docs repository.DocumentRepository, history repository.HistoryRepository, gen llm.Generator, defaultLimit int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &Engine{docs: docs, history: history, gen: gen, limit: defaultLimit, logger: logger}
}

// Query retrieves the corpus, detects the persona, calls the model, and
// records the exchange in history. An empty corpus short-circuits
// before any model call; model failures are reported in the answer but
// never persisted to history.
func (e *Engine) Query(ctx context.Context, question string, opts Options) Answer {
	start := time.Now()

	limit := opts.Limit
	if limit <= 0 {
		limit = e.limit
	}
	docs, err := e.docs.ListCompleted(ctx, repository.ListFilter{
		DocumentType: opts.DocumentType,
		Limit:        limit,
	})
	if err != nil {
		return Answer{
			Text:          fmt.Sprintf("Failed to load documents: %v", err),
			Persona:       PersonaAssistant,
			ExecutionTime: time.Since(start),
			ErrorTag:      err.Error(),
		}
	}

	if len(docs) == 0 {
		return Answer{
			Text:          "No documents found. Please upload and process documents first.",
			Persona:       PersonaAssistant,
			ExecutionTime: time.Since(start),
			ErrorTag:      "no_documents",
		}
	}

	persona := DetectPersona(question)
	e.logger.Info("query.persona", "persona", persona, "docs", len(docs))

	corpus := BuildContext(docs)
	answer, err := e.gen.Generate(ctx, SystemPrompt(persona), BuildUserPrompt(question, corpus))
	if err != nil {
		e.logger.Error("query.generate_failed", "persona", persona, "error", err)
		return Answer{
			Text:          fmt.Sprintf("Failed to answer the question: %v", err),
			Persona:       persona,
			ExecutionTime: time.Since(start),
			ErrorTag:      err.Error(),
		}
	}

	elapsed := time.Since(start)
	ids := make([]uuid.UUID, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	if err := e.history.Append(ctx, &entity.SearchHistory{
		Query:         question,
		Response:      answer,
		DocumentIDs:   ids,
		ExecutionTime: elapsed.Seconds(),
	}); err != nil {
		// History is best-effort: the answer still goes back to the user.
		e.logger.Error("query.history_failed", "error", err)
	}

	e.logger.Info("query.ok", "persona", persona, "docs", len(docs), "elapsed", elapsed)
	return Answer{
		Text:          answer,
		Persona:       persona,
		DocumentIDs:   ids,
		NumDocuments:  len(docs),
		ExecutionTime: elapsed,
	}
}
