package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kb-agent/internal/models"
	"kb-agent/internal/vectorindex"
)

type fakeProvider struct {
	vec []float32
	err error
}

func (p *fakeProvider) Embed(context.Context, string) ([]float32, error) {
	return p.vec, p.err
}

type fakeGenerator struct {
	system string
	user   string
	calls  int
	answer string
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.calls++
	g.system = system
	g.user = user
	return g.answer, g.err
}

func seededIndex(t *testing.T) *vectorindex.Index {
	t.Helper()
	ctx := context.Background()
	idx, err := vectorindex.New(vectorindex.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	entries := []struct {
		vec  []float32
		text string
		meta vectorindex.Metadata
	}{
		{[]float32{1, 0, 0}, "alpha text", vectorindex.Metadata{Source: "b.txt", ChunkID: 0}},
		{[]float32{0.9, 0.1, 0}, "beta text", vectorindex.Metadata{Source: "a.txt", ChunkID: 0}},
		{[]float32{0.8, 0.2, 0}, "gamma text", vectorindex.Metadata{Source: "b.txt", ChunkID: 1}},
	}
	for _, e := range entries {
		require.NoError(t, idx.Add(ctx, e.vec, e.text, e.meta))
	}
	return idx
}

func TestAnswerDeduplicatesSources(t *testing.T) {
	idx := seededIndex(t)
	gen := &fakeGenerator{answer: "grounded answer"}
	a := NewAnswerer(&fakeProvider{vec: []float32{1, 0, 0}}, gen, 4)

	resp, err := a.Answer(context.Background(), "what is alpha?", idx)
	require.NoError(t, err)

	assert.Equal(t, "grounded answer", resp.Content)
	assert.Equal(t, []string{"a.txt", "b.txt"}, resp.Sources)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, models.SystemInstruction, gen.system)
}

func TestAnswerPromptEnumeratesExcerpts(t *testing.T) {
	idx := seededIndex(t)
	gen := &fakeGenerator{answer: "ok"}
	a := NewAnswerer(&fakeProvider{vec: []float32{1, 0, 0}}, gen, 4)

	_, err := a.Answer(context.Background(), "what is alpha?", idx)
	require.NoError(t, err)

	assert.Contains(t, gen.user, "User question: what is alpha?")
	assert.Contains(t, gen.user, "[0] Source: b.txt")
	assert.Contains(t, gen.user, "alpha text")
	assert.Contains(t, gen.user, "ONLY source of truth")
	assert.Contains(t, gen.user, "based ONLY on the excerpts")
}

func TestAnswerEmptyIndexStillInvokesModel(t *testing.T) {
	idx, err := vectorindex.New(vectorindex.Options{})
	require.NoError(t, err)
	defer idx.Close()

	gen := &fakeGenerator{answer: "the excerpts are insufficient"}
	a := NewAnswerer(&fakeProvider{vec: []float32{1, 0, 0}}, gen, 4)

	resp, err := a.Answer(context.Background(), "anything?", idx)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.NotContains(t, gen.user, "[0] Source:")
	assert.Empty(t, resp.Sources)
}

func TestAnswerEmbeddingFailurePropagates(t *testing.T) {
	idx := seededIndex(t)
	embedErr := errors.New("cannot encode")
	gen := &fakeGenerator{}
	a := NewAnswerer(&fakeProvider{err: embedErr}, gen, 4)

	_, err := a.Answer(context.Background(), "q", idx)

	require.ErrorIs(t, err, embedErr)
	assert.Zero(t, gen.calls)
}

func TestAnswerGeneratorFailurePropagates(t *testing.T) {
	idx := seededIndex(t)
	genErr := errors.New("upstream down")
	a := NewAnswerer(&fakeProvider{vec: []float32{1, 0, 0}}, &fakeGenerator{err: genErr}, 4)

	_, err := a.Answer(context.Background(), "q", idx)

	require.ErrorIs(t, err, genErr)
}

func TestSourcesDedupAndOrder(t *testing.T) {
	docs := []vectorindex.Result{
		{Metadata: vectorindex.Metadata{Source: "z.pdf"}},
		{Metadata: vectorindex.Metadata{Source: "a.txt"}},
		{Metadata: vectorindex.Metadata{Source: "z.pdf"}},
		{Metadata: vectorindex.Metadata{Source: ""}},
	}

	assert.Equal(t, []string{"a.txt", "z.pdf"}, Sources(docs))
	assert.Empty(t, Sources(nil))
}

func TestBuildPromptUnknownSource(t *testing.T) {
	prompt := BuildPrompt("q", []vectorindex.Result{{Text: "body"}})

	assert.Contains(t, prompt, "[0] Source: unknown")
}
