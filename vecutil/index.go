package vecutil

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/viant/vecscore/vector"
)

// Index provides a higher-level, Pinecone-style text API on top of a
// vector.Store. Embeddings are computed with the caller's EmbedFunc.
type Index struct {
	Store vector.Store
	Embed EmbedFunc
}

// NewIndex constructs an Index over store.
func NewIndex(store vector.Store, embed EmbedFunc) (*Index, error) {
	if store == nil {
		return nil, fmt.Errorf("vecutil: store is nil")
	}
	if embed == nil {
		return nil, fmt.Errorf("vecutil: EmbedFunc is nil")
	}
	return &Index{Store: store, Embed: embed}, nil
}

// Document represents a text document to be embedded and stored.
// Metadata is modeled as a raw JSON (or other encoding) string.
type Document struct {
	ID      string
	Content string
	Meta    string
}

// Match represents a single similarity search hit.
type Match struct {
	ID      string
	Score   float64
	Content string
	Meta    string
}

// UpsertDocumentsText embeds each document's Content and upserts it into the
// store.
func (ix *Index) UpsertDocumentsText(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vecs, err := EmbedAll(ctx, ix.Embed, texts)
	if err != nil {
		return err
	}
	out := make([]vector.Document, len(docs))
	for i, d := range docs {
		out[i] = vector.Document{ID: d.ID, Content: d.Content, Metadata: d.Meta, Embedding: vecs[i]}
	}
	if _, err := ix.Store.AddDocuments(ctx, out); err != nil {
		return err
	}
	log.Debug().Int("documents", len(docs)).Msg("vecutil: upserted")
	return nil
}

// DeleteDocuments removes documents with the given ids.
func (ix *Index) DeleteDocuments(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := ix.Store.Remove(ctx, id); err != nil {
			return fmt.Errorf("vecutil: remove %s: %w", id, err)
		}
	}
	return nil
}

// QueryText embeds query and returns up to k matches ordered by descending
// cosine similarity. When k <= 0, all documents are returned.
func (ix *Index) QueryText(ctx context.Context, query string, k int) ([]Match, error) {
	if ix.Embed == nil {
		return nil, fmt.Errorf("vecutil: EmbedFunc is nil on Index")
	}
	qVec, err := ix.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vecutil: embed query: %w", err)
	}
	docs, err := ix.Store.SimilaritySearch(ctx, qVec, k)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]Match, len(docs))
	for i, d := range docs {
		out[i] = Match{ID: d.ID, Score: d.Score, Content: d.Content, Meta: d.Metadata}
	}
	return out, nil
}
