package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docuvault/internal/common"
)

func TestHealthCheck(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}

func TestHealthCheckAfterClose(t *testing.T) {
	store, err := Open(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.HealthCheck(context.Background())
	assert.ErrorIs(t, err, common.ErrDatabase)
}
