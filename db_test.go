package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedModel(t *testing.T) {
	db, err := openCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	inner := &fakeModel{replies: []string{"first", "second"}}
	m := &cachedModel{Model: inner, db: db}

	got, err := m.Generate(ctx, "prompt a")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = m.Generate(ctx, "prompt a")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
	assert.Len(t, inner.prompts, 1)

	got, err = m.Generate(ctx, "prompt b")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
	assert.Len(t, inner.prompts, 2)

	t.Run("errorsAreNotCached", func(t *testing.T) {
		failing := &cachedModel{Model: &fakeModel{err: errors.New("down")}, db: db}
		_, err := failing.Generate(ctx, "prompt c")
		assert.Error(t, err)

		ok := &cachedModel{Model: &fakeModel{replies: []string{"third"}}, db: db}
		got, err := ok.Generate(ctx, "prompt c")
		require.NoError(t, err)
		assert.Equal(t, "third", got)
	})

	t.Run("undecodableRepliesAreDropped", func(t *testing.T) {
		inner := &fakeModel{replies: []string{"Sorry, no JSON today.", `{"recommendations": [{"card_name": "Autograph"}]}`}}
		adv := newAdvisor(&cachedModel{Model: inner, db: db}, quietStatus())

		first := adv.cardRecommendations(ctx, testInput())
		assert.Empty(t, first.Recommendations)

		second := adv.cardRecommendations(ctx, testInput())
		require.Len(t, second.Recommendations, 1)
		assert.Equal(t, "Autograph", second.Recommendations[0].CardName)
		assert.Len(t, inner.prompts, 2)

		third := adv.cardRecommendations(ctx, testInput())
		require.Len(t, third.Recommendations, 1)
		assert.Len(t, inner.prompts, 2)
	})
}
