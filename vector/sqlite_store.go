package vector

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/viant/vecscore/cosine"
)

// SQLiteStore implements Store on top of the docs table. Search loads every
// stored embedding and ranks documents with cosine.BatchCosineSimilarity.
type SQLiteStore struct {
	db    *sql.DB
	opts  []cosine.Option
	cache *resultCache
}

// NewSQLiteStore creates a new SQLite-backed Store. It ensures the docs schema
// exists in the provided database. opts tune the scoring kernel.
func NewSQLiteStore(db *sql.DB, opts ...cosine.Option) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("vector: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, fmt.Errorf("vector: ensure schema: %w", err)
	}
	return &SQLiteStore{db: db, opts: opts}, nil
}

// WithCache enables an in-process LRU cache of up to size search results,
// each kept for ttl (DefaultCacheTTL when ttl <= 0). Any write through the
// store invalidates the cache. Call it before the store is shared.
func (s *SQLiteStore) WithCache(size int, ttl time.Duration) *SQLiteStore {
	s.cache = newResultCache(size, ttl)
	return s
}

// AddDocuments inserts documents into the docs table, replacing content,
// metadata and embedding of documents whose ID already exists. Document.ID
// must be non-empty.
func (s *SQLiteStore) AddDocuments(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO docs(id, content, meta, embedding) VALUES(?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  content = excluded.content,
  meta = excluded.meta,
  embedding = excluded.embedding`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			return nil, fmt.Errorf("vector: Document.ID must be set in AddDocuments")
		}
		emb, err := EncodeEmbedding(d.Embedding)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, d.ID, d.Content, d.Metadata, emb); err != nil {
			return nil, fmt.Errorf("vector: insert %s: %w", d.ID, err)
		}
		ids = append(ids, d.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.invalidate()
	return ids, nil
}

// SimilaritySearch scores all documents against queryEmbedding and returns
// up to k of them ordered by descending score. Documents with equal scores
// keep insertion order; documents without an embedding score 0.
func (s *SQLiteStore) SimilaritySearch(ctx context.Context, queryEmbedding []float32, k int) ([]Document, error) {
	return s.Search(ctx, queryEmbedding, k, Filter{})
}

// Search is SimilaritySearch restricted to documents accepted by filter.
// Filtering happens before scoring, so k counts matching documents only.
func (s *SQLiteStore) Search(ctx context.Context, queryEmbedding []float32, k int, filter Filter) ([]Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := filter.matcher()
	if err != nil {
		return nil, err
	}
	var key string
	cached := false
	if s.cache != nil {
		key, cached = s.cache.key(queryEmbedding, k, filter)
		if cached {
			if docs, ok := s.cache.get(key); ok {
				log.Debug().Int("returned", len(docs)).Msg("vector: search cache hit")
				return docs, nil
			}
		}
	}

	docs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loaded := len(docs)
	if !filter.IsZero() {
		kept := docs[:0]
		for i := range docs {
			if m.match(&docs[i]) {
				kept = append(kept, docs[i])
			}
		}
		docs = kept
	}
	if len(docs) == 0 {
		docs = nil
	} else {
		docs = s.rank(queryEmbedding, docs, k)
	}
	log.Debug().Int("loaded", loaded).Int("returned", len(docs)).Int("k", k).Msg("vector: similarity search")
	if cached {
		s.cache.add(key, docs)
	}
	return docs, nil
}

func (s *SQLiteStore) rank(query []float32, docs []Document, k int) []Document {
	items := make([][]float32, len(docs))
	for i := range docs {
		items[i] = docs[i].Embedding
	}
	scores := cosine.BatchCosineSimilarity(query, items, s.opts...)
	for i := range docs {
		docs[i].Score = scores[i]
	}
	sort.SliceStable(docs, func(a, b int) bool { return docs[a].Score > docs[b].Score })
	if k > 0 && k < len(docs) {
		docs = docs[:k]
	}
	return docs
}

func (s *SQLiteStore) invalidate() {
	if s.cache != nil {
		s.cache.invalidate()
	}
}

func (s *SQLiteStore) load(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, COALESCE(content, ''), COALESCE(meta, ''), embedding FROM docs ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		var emb []byte
		if err := rows.Scan(&d.ID, &d.Content, &d.Metadata, &emb); err != nil {
			return nil, err
		}
		if d.Embedding, err = DecodeEmbedding(emb); err != nil {
			return nil, fmt.Errorf("vector: document %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes a document by ID from the docs table.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("vector: Remove called with empty id")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM docs WHERE id = ?`, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
