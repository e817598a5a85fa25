package vector

import (
	"context"
)

// Document represents a logical document stored in the vector store.
type Document struct {
	// ID is the logical identifier of the document. It must be set on insert.
	ID string

	// Content holds the main text/body of the document.
	Content string

	// Metadata is an opaque JSON or structured payload associated with the
	// document, stored verbatim.
	Metadata string

	// Embedding is the vector representation of the document content. Its
	// length may differ from other documents and from the query.
	Embedding []float32

	// Score is the cosine similarity to the query. It is only populated on
	// documents returned by SimilaritySearch and Search.
	Score float64
}

// Store defines the application-level vector store API.
type Store interface {
	// AddDocuments inserts or replaces documents and returns their IDs in
	// input order.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// SimilaritySearch scores every stored document against queryEmbedding
	// and returns up to k documents ordered by descending score. When k <= 0
	// all documents are returned.
	SimilaritySearch(ctx context.Context, queryEmbedding []float32, k int) ([]Document, error)

	// Search is SimilaritySearch over the documents accepted by filter.
	Search(ctx context.Context, queryEmbedding []float32, k int, filter Filter) ([]Document, error)

	// Remove deletes the document with the given ID.
	Remove(ctx context.Context, id string) error
}
