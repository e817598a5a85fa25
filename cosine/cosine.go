package cosine

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// Epsilon is added to every norm so that zero-magnitude vectors yield a
// finite score instead of dividing by zero.
const Epsilon = 1e-8

// BatchCosineSimilarity returns the cosine similarity between query and each
// candidate in items, in the same order as items. The result always has
// len(items) entries and is never nil.
//
// The dot product covers min(len(query), len(item)) elements; the query and
// item norms cover their full lengths. The function never fails and does not
// modify its inputs.
func BatchCosineSimilarity(query []float32, items [][]float32, opts ...Option) []float64 {
	scores := make([]float64, len(items))
	if len(items) == 0 {
		return scores
	}
	qNorm := Norm(query)
	o := newOptions(opts)
	if !o.parallel(len(items)) {
		scoreRange(query, qNorm, items, scores)
		return scores
	}
	size := o.chunkSize(len(items))
	var g errgroup.Group
	g.SetLimit(o.Workers)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		g.Go(func() error {
			scoreRange(query, qNorm, items[start:end], scores[start:end])
			return nil
		})
	}
	// workers always return nil, Wait only joins them
	g.Wait()
	return scores
}

// CosineSimilarity scores a single pair under the same contract as
// BatchCosineSimilarity.
func CosineSimilarity(a, b []float32) float64 {
	return score(a, Norm(a), b)
}

// Norm returns the Euclidean norm of v plus Epsilon.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum) + Epsilon
}

// scoreRange writes one score per item into out; len(out) == len(items).
func scoreRange(query []float32, qNorm float64, items [][]float32, out []float64) {
	for i, item := range items {
		out[i] = score(query, qNorm, item)
	}
}

func score(query []float32, qNorm float64, item []float32) float64 {
	d := min(len(query), len(item))
	var dot, sq float64
	for j := 0; j < d; j++ {
		c := float64(item[j])
		dot += float64(query[j]) * c
		sq += c * c
	}
	for _, x := range item[d:] {
		c := float64(x)
		sq += c * c
	}
	return dot / (qNorm * (math.Sqrt(sq) + Epsilon))
}
