package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"prediction_market/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTemp(t *testing.T) *CommentRepository {
	t.Helper()
	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "comments.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func comment(id string, market int64, at time.Time) entity.Comment {
	return entity.Comment{
		ID:            id,
		MarketID:      market,
		WalletAddress: "0x00000000000000000000000000000000000000aa",
		Content:       "comment " + id,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func TestCommentRepositoryOrdering(t *testing.T) {
	repo := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, c := range []entity.Comment{
		comment("a", 1, base),
		comment("b", 1, base.Add(time.Minute)),
		comment("c", 2, base.Add(2*time.Minute)),
		// same timestamp as b, inserted later
		comment("d", 1, base.Add(time.Minute)),
	} {
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}

	got, err := repo.ListByMarket(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "a", got[2].ID)
	assert.True(t, got[2].CreatedAt.Equal(base))
	assert.Equal(t, "comment a", got[2].Content)
}

func TestCommentRepositoryEmptyMarket(t *testing.T) {
	repo := openTemp(t)

	got, err := repo.ListByMarket(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCommentRepositoryDuplicateID(t *testing.T) {
	repo := openTemp(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Create(ctx, comment("x", 1, now))
	require.NoError(t, err)
	_, err = repo.Create(ctx, comment("x", 1, now))
	assert.Error(t, err)
}
