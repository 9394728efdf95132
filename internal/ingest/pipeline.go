package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"kb-agent/internal/chunker"
	"kb-agent/internal/embedding"
	"kb-agent/internal/extract"
	"kb-agent/internal/vectorindex"
)

// Pipeline turns an uploaded document into a freshly populated vector
// index: extract text, chunk it, embed every chunk, add each to a
// brand-new index.
type Pipeline struct {
	provider  embedding.Provider
	chunkSize int
	indexOpts vectorindex.Options
}

func NewPipeline(provider embedding.Provider, chunkSize int, indexOpts vectorindex.Options) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultSize
	}
	return &Pipeline{provider: provider, chunkSize: chunkSize, indexOpts: indexOpts}
}

// Ingest processes one document and hands ownership of the resulting index
// to the caller, who decides whether to attach it to a session. Any
// failure, including a single embedding error, aborts the whole ingestion
// and closes the partial index; a nil index is never half-populated.
func (p *Pipeline) Ingest(ctx context.Context, filename string, content []byte) (*vectorindex.Index, error) {
	text, err := extract.Text(filename, content)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s yielded no text", extract.ErrExtraction, filename)
	}

	idx, err := vectorindex.New(p.indexOpts)
	if err != nil {
		return nil, err
	}

	chunks := chunker.Split(text, p.chunkSize)
	for i, chunk := range chunks {
		vec, err := p.provider.Embed(ctx, chunk)
		if err != nil {
			idx.Close()
			return nil, fmt.Errorf("embed chunk %d of %s: %w", i, filename, err)
		}
		meta := vectorindex.Metadata{Source: filename, ChunkID: i}
		if err := idx.Add(ctx, vec, chunk, meta); err != nil {
			idx.Close()
			return nil, err
		}
	}

	log.Debug().Str("file", filename).Int("chunks", len(chunks)).Msg("ingested document")
	return idx, nil
}
