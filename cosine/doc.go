// Package cosine implements the batch cosine similarity kernel used by the
// store, index and SQL layers of this module.
//
// The kernel scores one query vector against an ordered batch of candidate
// vectors and returns one score per candidate, aligned by index:
//
//	dot    = sum(query[j]*item[j])  for j < min(len(query), len(item))
//	norm_q = sqrt(sum(query[j]^2))  over the whole query   + Epsilon
//	norm_c = sqrt(sum(item[j]^2))   over the whole item    + Epsilon
//	score  = dot / (norm_q * norm_c)
//
// Vectors of different lengths never fail: only the overlapping prefix feeds
// the dot product while each norm covers its full vector. All-zero or empty
// vectors score 0.
//
// Large batches are scored in parallel. Scores are reproducible for a fixed
// set of options; callers should compare results across configurations with
// a tolerance.
package cosine
