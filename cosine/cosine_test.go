package cosine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCosineSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		query []float32
		items [][]float32
		want  []float64
		delta float64
	}{
		{
			name:  "identical",
			query: []float32{1, 2, 3},
			items: [][]float32{{1, 2, 3}},
			want:  []float64{1},
			delta: 1e-5,
		},
		{
			name:  "negated",
			query: []float32{1, -2, 0.5},
			items: [][]float32{{-1, 2, -0.5}},
			want:  []float64{-1},
			delta: 1e-5,
		},
		{
			name:  "orthogonal",
			query: []float32{1, 0},
			items: [][]float32{{0, 1}},
			want:  []float64{0},
			delta: 0,
		},
		{
			name:  "all zero",
			query: []float32{0, 0},
			items: [][]float32{{0, 0}},
			want:  []float64{0},
			delta: 0,
		},
		{
			name:  "empty query",
			query: nil,
			items: [][]float32{{1, 2}, {}},
			want:  []float64{0, 0},
			delta: 0,
		},
		{
			name:  "scaled candidate",
			query: []float32{3, 4},
			items: [][]float32{{30, 40}, {4, -3}},
			want:  []float64{1, 0},
			delta: 1e-5,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BatchCosineSimilarity(tc.query, tc.items)
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				assert.InDelta(t, tc.want[i], got[i], tc.delta, "score[%d]", i)
			}
		})
	}
}

func TestBatchCosineSimilarity_EmptyBatch(t *testing.T) {
	for _, q := range [][]float32{nil, {}, {1, 2, 3}} {
		got := BatchCosineSimilarity(q, nil)
		require.NotNil(t, got)
		assert.Empty(t, got)

		got = BatchCosineSimilarity(q, [][]float32{})
		require.NotNil(t, got)
		assert.Empty(t, got)
	}
}

// Mismatched lengths: the dot product uses the shared prefix while each norm
// covers the full vector. 5 / (sqrt(14) * sqrt(5)) = 5 / sqrt(70).
func TestBatchCosineSimilarity_MismatchedLengths(t *testing.T) {
	want := 5 / ((math.Sqrt(14) + Epsilon) * (math.Sqrt(5) + Epsilon))
	assert.InDelta(t, 0.5976143, want, 1e-7)

	got := BatchCosineSimilarity([]float32{1, 2, 3}, [][]float32{{1, 2}})
	require.Len(t, got, 1)
	assert.InDelta(t, want, got[0], 1e-12)

	got = BatchCosineSimilarity([]float32{1, 2}, [][]float32{{1, 2, 3}})
	require.Len(t, got, 1)
	assert.InDelta(t, want, got[0], 1e-12)

	// Trailing elements change the norm, so truncation is not a no-op.
	full := BatchCosineSimilarity([]float32{1, 2}, [][]float32{{1, 2}})
	assert.Greater(t, full[0], got[0])
}

func TestBatchCosineSimilarity_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	query := randomVector(rng, 32)
	items := make([][]float32, 200)
	for i := range items {
		items[i] = randomVector(rng, 32)
	}
	for i, s := range BatchCosineSimilarity(query, items) {
		assert.False(t, math.IsNaN(s) || math.IsInf(s, 0), "score[%d] not finite", i)
		assert.GreaterOrEqual(t, s, -1-1e-6, "score[%d]", i)
		assert.LessOrEqual(t, s, 1+1e-6, "score[%d]", i)
	}
}

func TestBatchCosineSimilarity_OrderPreserving(t *testing.T) {
	q := []float32{0.2, -0.4, 0.9}
	c1 := []float32{1, 1, 1}
	c2 := []float32{-0.3, 0.8}

	both := BatchCosineSimilarity(q, [][]float32{c1, c2})
	require.Len(t, both, 2)
	assert.Equal(t, BatchCosineSimilarity(q, [][]float32{c1})[0], both[0])
	assert.Equal(t, BatchCosineSimilarity(q, [][]float32{c2})[0], both[1])

	swapped := BatchCosineSimilarity(q, [][]float32{c2, c1})
	assert.Equal(t, both[0], swapped[1])
	assert.Equal(t, both[1], swapped[0])
}

func TestBatchCosineSimilarity_InputsUntouched(t *testing.T) {
	q := []float32{1, 2, 3}
	items := [][]float32{{3, 2, 1}, {0, 0}}
	BatchCosineSimilarity(q, items, WithParallelThreshold(0), WithWorkers(2))
	assert.Equal(t, []float32{1, 2, 3}, q)
	assert.Equal(t, [][]float32{{3, 2, 1}, {0, 0}}, items)
}

func TestBatchCosineSimilarity_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	query := randomVector(rng, 96)
	items := make([][]float32, 5000)
	for i := range items {
		// mixed dimensions exercise both truncation directions
		items[i] = randomVector(rng, 64+rng.Intn(64))
	}
	items[17] = nil
	items[18] = make([]float32, 96)

	sequential := BatchCosineSimilarity(query, items, Sequential())
	configs := map[string][]Option{
		"default":      nil,
		"two workers":  {WithWorkers(2), WithParallelThreshold(0)},
		"many workers": {WithWorkers(64), WithParallelThreshold(1)},
		"odd split":    {WithWorkers(7), WithParallelThreshold(100)},
	}
	for name, opts := range configs {
		t.Run(name, func(t *testing.T) {
			got := BatchCosineSimilarity(query, items, opts...)
			require.Len(t, got, len(sequential))
			for i := range sequential {
				tol := 1e-4 * math.Max(1, math.Abs(sequential[i]))
				if !assert.InDelta(t, sequential[i], got[i], tol, "score[%d]", i) {
					return
				}
			}
		})
	}
}

// Every chunk must have finished writing before the scores are returned.
func TestBatchCosineSimilarity_ParallelFillsEveryScore(t *testing.T) {
	query := []float32{3, 4}
	items := make([][]float32, 4096)
	for i := range items {
		items[i] = []float32{float32(i + 1), float32(i+1) * 4 / 3}
	}
	got := BatchCosineSimilarity(query, items, WithWorkers(3), WithParallelThreshold(0))
	require.Len(t, got, len(items))
	for i, score := range got {
		if !assert.InDelta(t, 1, score, 1e-6, "score[%d]", i) {
			return
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{0.5, 1.5, -2}
	b := []float32{1, 0.25}
	assert.Equal(t, BatchCosineSimilarity(a, [][]float32{b})[0], CosineSimilarity(a, b))
	assert.InDelta(t, 1, CosineSimilarity(a, a), 1e-6)
}

func TestNorm(t *testing.T) {
	assert.Equal(t, Epsilon, Norm(nil))
	assert.InDelta(t, 5, Norm([]float32{3, 4}), 1e-7)
}

func TestOptions(t *testing.T) {
	o := newOptions([]Option{WithWorkers(4), WithParallelThreshold(10), nil})
	assert.Equal(t, 4, o.Workers)
	assert.Equal(t, 10, o.ParallelThreshold)
	assert.False(t, o.parallel(9))
	assert.True(t, o.parallel(10))
	assert.Equal(t, minChunk, o.chunkSize(10))
	assert.Equal(t, 250, o.chunkSize(1000))

	o = newOptions([]Option{WithParallelThreshold(0), Sequential()})
	assert.False(t, o.parallel(1 << 20))
}

func randomVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rng.Float32()*2 - 1
	}
	return v
}

func BenchmarkBatchCosineSimilarity(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	query := randomVector(rng, 384)
	items := make([][]float32, 10000)
	for i := range items {
		items[i] = randomVector(rng, 384)
	}
	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			BatchCosineSimilarity(query, items, Sequential())
		}
	})
	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			BatchCosineSimilarity(query, items)
		}
	})
}
