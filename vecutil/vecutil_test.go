package vecutil

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vecscore/engine"
	"github.com/viant/vecscore/vector"
)

// letterEmbed maps text to counts of the letters a, b and c.
func letterEmbed(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(text, "!") {
		return nil, errors.New("boom")
	}
	return []float32{
		float32(strings.Count(text, "a")),
		float32(strings.Count(text, "b")),
		float32(strings.Count(text, "c")),
	}, nil
}

func TestScoreTexts(t *testing.T) {
	ctx := context.Background()
	scores, err := ScoreTexts(ctx, letterEmbed, "aa", []string{"a", "b", "ab", ""})
	require.NoError(t, err)
	require.Len(t, scores, 4)
	assert.InDelta(t, 1, scores[0], 1e-6)
	assert.InDelta(t, 0, scores[1], 1e-6)
	assert.InDelta(t, 0.7071068, scores[2], 1e-6)
	assert.Zero(t, scores[3])

	scores, err = ScoreTexts(ctx, letterEmbed, "a", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)

	_, err = ScoreTexts(ctx, letterEmbed, "a", []string{"b", "c!"})
	assert.ErrorContains(t, err, "embed text 1")

	_, err = ScoreTexts(ctx, nil, "a", nil)
	assert.Error(t, err)
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	store, err := vector.NewSQLiteStore(db)
	require.NoError(t, err)
	ix, err := NewIndex(store, letterEmbed)
	require.NoError(t, err)
	return ix
}

func TestIndex_UpsertQueryDelete(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.UpsertDocumentsText(ctx, []Document{
		{ID: "1", Content: "aaa", Meta: `{"k":1}`},
		{ID: "2", Content: "bbb"},
		{ID: "3", Content: "abc"},
	}))

	matches, err := ix.QueryText(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].ID)
	assert.Equal(t, `{"k":1}`, matches[0].Meta)
	assert.InDelta(t, 1, matches[0].Score, 1e-6)
	assert.Equal(t, "3", matches[1].ID)

	require.NoError(t, ix.DeleteDocuments(ctx, []string{"1"}))
	matches, err = ix.QueryText(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "3", matches[0].ID)
	assert.Equal(t, "2", matches[1].ID)
}

func TestIndex_Errors(t *testing.T) {
	_, err := NewIndex(nil, letterEmbed)
	assert.Error(t, err)

	ix := newTestIndex(t)
	ctx := context.Background()
	assert.ErrorContains(t, ix.UpsertDocumentsText(ctx, []Document{{ID: "x", Content: "!"}}), "boom")
	_, err = ix.QueryText(ctx, "!", 1)
	assert.ErrorContains(t, err, "embed query")

	matches, err := ix.QueryText(ctx, "a", 1)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
