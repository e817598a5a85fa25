// Package vector defines the document store API and the SQLite-backed store
// used for similarity search in this project. It includes:
//   - Document model and Store interface
//   - SQLiteStore: durable documents ranked with the cosine batch kernel
//   - Filter: metadata containment and text match applied before ranking
//   - an optional in-process LRU cache of search results
//   - Schema helpers to create a docs table
//   - Embedding encoding (single vector and candidate batch BLOBs)
//   - L2 distance for equal-length vectors
package vector
