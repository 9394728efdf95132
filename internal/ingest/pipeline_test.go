package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kb-agent/internal/extract"
	"kb-agent/internal/vectorindex"
)

// fakeProvider derives a deterministic non-zero vector from the text.
type fakeProvider struct{}

func (fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	vec[0] = 1
	for i, b := range []byte(text) {
		vec[i%8] += float32(b)
	}
	return vec, nil
}

type failingProvider struct{}

func (failingProvider) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("model cannot encode input")
}

func TestIngestPopulatesFreshIndex(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(fakeProvider{}, 1000, vectorindex.Options{})

	content := []byte(strings.Repeat("a", 2500))
	idx, err := p.Ingest(ctx, "f.txt", content)
	require.NoError(t, err)
	require.NotNil(t, idx)
	defer idx.Close()

	assert.Equal(t, 3, idx.Count())

	vec, err := fakeProvider{}.Embed(ctx, strings.Repeat("a", 1000))
	require.NoError(t, err)
	res, err := idx.Query(ctx, vec, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)

	ids := make(map[string]bool)
	for _, r := range res {
		assert.Equal(t, "f.txt", r.Metadata.Source)
		ids[vectorindex.EntryID(r.Metadata)] = true
	}
	assert.Equal(t, map[string]bool{"f.txt_0": true, "f.txt_1": true, "f.txt_2": true}, ids)
}

func TestIngestChunkOrderAndContent(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(fakeProvider{}, 10, vectorindex.Options{})

	idx, err := p.Ingest(ctx, "doc.txt", []byte("0123456789abcdefghij12345"))
	require.NoError(t, err)
	defer idx.Close()

	require.Equal(t, 3, idx.Count())

	vec, _ := fakeProvider{}.Embed(ctx, "0123456789")
	res, err := idx.Query(ctx, vec, 3)
	require.NoError(t, err)

	byID := make(map[int]string)
	for _, r := range res {
		byID[r.Metadata.ChunkID] = r.Text
	}
	assert.Equal(t, "0123456789", byID[0])
	assert.Equal(t, "abcdefghij", byID[1])
	assert.Equal(t, "12345", byID[2])
}

func TestIngestEmptyPayloadFails(t *testing.T) {
	p := NewPipeline(fakeProvider{}, 1000, vectorindex.Options{})

	idx, err := p.Ingest(context.Background(), "empty.txt", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrExtraction)
	assert.Nil(t, idx)
}

func TestIngestUndecodablePayloadFails(t *testing.T) {
	p := NewPipeline(fakeProvider{}, 1000, vectorindex.Options{})

	idx, err := p.Ingest(context.Background(), "blob.bin", []byte{0xff, 0xfe, 0x80})

	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrExtraction)
	assert.Nil(t, idx)
}

func TestIngestEmbeddingFailureAbortsWholeIngestion(t *testing.T) {
	p := NewPipeline(failingProvider{}, 1000, vectorindex.Options{})

	idx, err := p.Ingest(context.Background(), "f.txt", []byte("some content"))

	require.Error(t, err)
	assert.Nil(t, idx, "a partial index must never be returned as successful")
}

func TestIngestDefaultsChunkSize(t *testing.T) {
	p := NewPipeline(fakeProvider{}, 0, vectorindex.Options{})

	idx, err := p.Ingest(context.Background(), "f.txt", []byte(strings.Repeat("x", 1500)))
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, 2, idx.Count())
}
