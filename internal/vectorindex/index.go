package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ErrUnavailable marks storage-level failures of the backing store.
// Retrieval correctness depends on the index being complete, so these are
// surfaced rather than degraded.
var ErrUnavailable = errors.New("vector index unavailable")

const collectionName = "kb_store"

// Metadata identifies the origin of an indexed chunk.
type Metadata struct {
	Source  string
	ChunkID int
}

// Result is a retrieved chunk with its origin and cosine similarity to the
// query vector.
type Result struct {
	Text       string
	Metadata   Metadata
	Similarity float32
}

// Options control where an index keeps its entries.
type Options struct {
	// PersistDir, when non-empty, roots a fresh scratch directory created
	// per index. Empty keeps the index fully in memory. Either way the
	// storage is ephemeral and owned by exactly one Index.
	PersistDir string
}

// Index is an isolated vector store over its own chromem-go database.
// Instances never share backing state, including with previously cleared
// ones, so concurrent sessions cannot see each other's entries.
type Index struct {
	mu         sync.Mutex
	db         *chromem.DB
	collection *chromem.Collection
	dir        string
}

// New allocates a new, empty, isolated index.
func New(opts Options) (*Index, error) {
	idx := &Index{}
	if opts.PersistDir != "" {
		if err := os.MkdirAll(opts.PersistDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		dir, err := os.MkdirTemp(opts.PersistDir, "kbidx-*")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		db, err := chromem.NewPersistentDB(dir, false)
		if err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		idx.db = db
		idx.dir = dir
	} else {
		idx.db = chromem.NewDB()
	}

	c, err := idx.db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("%w: create collection: %v", ErrUnavailable, err)
	}
	idx.collection = c
	return idx, nil
}

// EntryID builds the upsert key for a chunk.
func EntryID(meta Metadata) string {
	return meta.Source + "_" + strconv.Itoa(meta.ChunkID)
}

// Add inserts or overwrites the entry keyed by the chunk's metadata.
// Ingesting the same file twice into one index replaces its chunks instead
// of duplicating them.
func (x *Index) Add(ctx context.Context, embedding []float32, text string, meta Metadata) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	doc := chromem.Document{
		ID:        EntryID(meta),
		Content:   text,
		Embedding: embedding,
		Metadata: map[string]string{
			"source":   meta.Source,
			"chunk_id": strconv.Itoa(meta.ChunkID),
		},
	}
	if err := x.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("%w: add %s: %v", ErrUnavailable, doc.ID, err)
	}
	return nil
}

// Query returns up to topK entries ranked by descending cosine similarity.
// When the index holds fewer entries than topK, all of them are returned;
// an empty index yields an empty result without error.
func (x *Index) Query(ctx context.Context, embedding []float32, topK int) ([]Result, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	count := x.collection.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	res, err := x.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrUnavailable, err)
	}

	out := make([]Result, 0, len(res))
	for _, r := range res {
		chunkID, _ := strconv.Atoi(r.Metadata["chunk_id"])
		out = append(out, Result{
			Text:       r.Content,
			Metadata:   Metadata{Source: r.Metadata["source"], ChunkID: chunkID},
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

// Count reports the number of entries currently held.
func (x *Index) Count() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.collection.Count()
}

// Clear discards all entries. Afterwards the index is logically equivalent
// to a freshly created one; other instances are unaffected.
func (x *Index) Clear() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrUnavailable, err)
	}
	c, err := x.db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: clear: %v", ErrUnavailable, err)
	}
	x.collection = c
	return nil
}

// Close releases the backing storage. The index must not be used after.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dir != "" {
		return os.RemoveAll(x.dir)
	}
	return nil
}
