package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docuvault/internal/common"
	"github.com/joseph-ayodele/docuvault/internal/entity"
)

func TestHistoryAppendAndList(t *testing.T) {
	store := newTestStore(t)
	repo := NewHistoryRepository(store, nil)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	first := &entity.SearchHistory{
		Query:         "what is the total?",
		Response:      "425.50 USD",
		DocumentIDs:   ids,
		CreatedAt:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		ExecutionTime: 1.8,
	}
	require.NoError(t, repo.Append(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	second := &entity.SearchHistory{
		Query:     "list all receipts",
		Response:  "two receipts found",
		CreatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Append(ctx, second))

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// newest first
	assert.Equal(t, "list all receipts", entries[0].Query)
	assert.Equal(t, "what is the total?", entries[1].Query)
	assert.Equal(t, ids, entries[1].DocumentIDs)
	assert.InDelta(t, 1.8, entries[1].ExecutionTime, 1e-9)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "list all receipts", limited[0].Query)
}

func TestHistoryDelete(t *testing.T) {
	store := newTestStore(t)
	repo := NewHistoryRepository(store, nil)
	ctx := context.Background()

	entry := &entity.SearchHistory{Query: "q", Response: "r"}
	require.NoError(t, repo.Append(ctx, entry))
	require.NoError(t, repo.Delete(ctx, entry.ID))

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), common.ErrNotFound)
}

func TestHistoryClear(t *testing.T) {
	store := newTestStore(t)
	repo := NewHistoryRepository(store, nil)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, &entity.SearchHistory{Query: "a"}))
	require.NoError(t, repo.Append(ctx, &entity.SearchHistory{Query: "b"}))
	require.NoError(t, repo.Clear(ctx))

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
