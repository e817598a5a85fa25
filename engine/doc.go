// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections and registering the SQL scalar
// functions that expose the cosine kernel (vec_cosine, vec_batch_cosine) and
// L2 distance (vec_l2) to SQL. It keeps a thin surface so other packages can
// share the same driver instance.
package engine
