package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/entity"
)

type HistoryRepository interface {
	Append(ctx context.Context, entry *entity.SearchHistory) error
	List(ctx context.Context, limit int) ([]*entity.SearchHistory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context) error
}

type historyRepository struct {
	store  *Store
	logger *slog.Logger
}

func NewHistoryRepository(store *Store, logger *slog.Logger) HistoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &historyRepository{store: store, logger: logger}
}

func (r *historyRepository) Append(ctx context.Context, entry *entity.SearchHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	ids, err := json.Marshal(entry.DocumentIDs)
	if err != nil {
		return common.WrapError(err, "marshal document ids")
	}

	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO search_history (id, query, response, document_ids, created_at, execution_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.Query, entry.Response, string(ids),
		entry.CreatedAt, entry.ExecutionTime,
	)
	if err != nil {
		r.logger.Error("history.append_failed", "id", entry.ID, "error", err)
		return common.WrapError(err, "append history")
	}
	return nil
}

func (r *historyRepository) List(ctx context.Context, limit int) ([]*entity.SearchHistory, error) {
	query := `SELECT id, query, response, document_ids, created_at, execution_time
		FROM search_history ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list history")
	}
	defer rows.Close()

	var entries []*entity.SearchHistory
	for rows.Next() {
		var (
			entry entity.SearchHistory
			idStr string
			ids   sql.NullString
		)
		if err := rows.Scan(&idStr, &entry.Query, &entry.Response, &ids, &entry.CreatedAt, &entry.ExecutionTime); err != nil {
			return nil, err
		}
		entry.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse history id: %w", err)
		}
		if ids.Valid && ids.String != "" {
			if err := json.Unmarshal([]byte(ids.String), &entry.DocumentIDs); err != nil {
				return nil, fmt.Errorf("parse history document ids: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *historyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, err := r.store.db.ExecContext(ctx,
		`DELETE FROM search_history WHERE id = ?`, id.String())
	if err != nil {
		return common.WrapError(err, "delete history entry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("history entry %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *historyRepository) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return common.WrapError(err, "clear history")
	}
	return nil
}
