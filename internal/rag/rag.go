package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"kb-agent/internal/embedding"
	"kb-agent/internal/models"
	"kb-agent/internal/vectorindex"
)

const defaultTopK = 4

// Generator produces a chat completion for one system+user exchange.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Answerer answers questions grounded in a session's vector index.
type Answerer struct {
	provider embedding.Provider
	gen      Generator
	topK     int
}

func NewAnswerer(provider embedding.Provider, gen Generator, topK int) *Answerer {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Answerer{provider: provider, gen: gen, topK: topK}
}

// Answer embeds the question, retrieves the most similar chunks and asks
// the chat model to answer from them alone. The returned sources are the
// deduplicated source filenames of the retrieved chunks, derived from
// retrieval metadata rather than parsed out of the model's own closing
// list.
func (a *Answerer) Answer(ctx context.Context, question string, idx *vectorindex.Index) (*models.PromptResponse, error) {
	vec, err := a.provider.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	docs, err := idx.Query(ctx, vec, a.topK)
	if err != nil {
		return nil, err
	}

	answer, err := a.gen.Generate(ctx, models.SystemInstruction, BuildPrompt(question, docs))
	if err != nil {
		return nil, err
	}

	log.Debug().Int("excerpts", len(docs)).Msg("answered question")
	return &models.PromptResponse{
		Query:   question,
		Content: answer,
		Sources: Sources(docs),
	}, nil
}

// BuildPrompt frames the retrieved chunks as the sole source of truth,
// enumerating each one tagged with its source filename.
func BuildPrompt(question string, docs []vectorindex.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, models.GroundedPromptHeader, question)
	for i, d := range docs {
		source := d.Metadata.Source
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&b, "[%d] Source: %s\n%s\n\n", i, source, d.Text)
	}
	b.WriteString(models.GroundedPromptFooter)
	return b.String()
}

// Sources deduplicates the source filenames of the retrieved chunks,
// sorted for a stable citation list.
func Sources(docs []vectorindex.Result) []string {
	seen := make(map[string]struct{}, len(docs))
	var out []string
	for _, d := range docs {
		s := d.Metadata.Source
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
