package sqlite

import (
	"context"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactsRepo_InsertAndListAll(t *testing.T) {
	ctx := context.Background()
	repo := NewFactsRepo(newTestDB(t))

	id1, err := repo.Insert(ctx, core.Fact{Key: "favorite color", Value: "blue", CreatedAt: 1000})
	require.NoError(t, err)
	id2, err := repo.Insert(ctx, core.Fact{Key: "birthday", Value: "June 5th", CreatedAt: 2000})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	facts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 2)

	// Recency order: newest first.
	assert.Equal(t, "birthday", facts[0].Key)
	assert.Equal(t, "favorite color", facts[1].Key)
}

func TestFactsRepo_DuplicateKeysAllowed(t *testing.T) {
	ctx := context.Background()
	repo := NewFactsRepo(newTestDB(t))

	_, err := repo.Insert(ctx, core.Fact{Key: "pet", Value: "cat", CreatedAt: 1000})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, core.Fact{Key: "pet", Value: "dog", CreatedAt: 2000})
	require.NoError(t, err)

	facts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}

func TestFactsRepo_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewFactsRepo(newTestDB(t))

	_, err := repo.Insert(ctx, core.Fact{Key: "favorite color", Value: "blue"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, core.Fact{Key: "birthday", Value: "June 5th"})
	require.NoError(t, err)

	byKey, err := repo.Search(ctx, "color")
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	assert.Equal(t, "blue", byKey[0].Value)

	byValue, err := repo.Search(ctx, "June")
	require.NoError(t, err)
	require.Len(t, byValue, 1)
	assert.Equal(t, "birthday", byValue[0].Key)

	none, err := repo.Search(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFactsRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewFactsRepo(newTestDB(t))

	id, err := repo.Insert(ctx, core.Fact{Key: "city", Value: "Warsaw", CreatedAt: 1000})
	require.NoError(t, err)

	err = repo.Update(ctx, core.Fact{ID: id, Key: "city", Value: "Krakow", CreatedAt: 2000})
	require.NoError(t, err)

	facts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "Krakow", facts[0].Value)
	assert.Equal(t, int64(2000), facts[0].CreatedAt)

	err = repo.Update(ctx, core.Fact{ID: 9999, Key: "x", Value: "y"})
	assert.Error(t, err)
}

func TestFactsRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewFactsRepo(newTestDB(t))

	id, err := repo.Insert(ctx, core.Fact{Key: "a", Value: "1"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, core.Fact{Key: "b", Value: "2"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, id))
	facts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "b", facts[0].Key)

	require.NoError(t, repo.DeleteAll(ctx))
	facts, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts)
}
