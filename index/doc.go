// Package index defines a minimal abstraction for vector indexes that can be
// built from embeddings, queried for kNN, and serialized for persistence.
// The bruteforce subpackage scores every entry with the cosine batch kernel.
package index
