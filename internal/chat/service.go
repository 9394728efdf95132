package chat

import (
	"context"

	"github.com/rs/zerolog/log"

	"kb-agent/internal/auditlog"
	"kb-agent/internal/ingest"
	"kb-agent/internal/models"
	"kb-agent/internal/rag"
	"kb-agent/internal/session"
)

const maxTitleLen = 40

// File is one uploaded document.
type File struct {
	Name    string
	Content []byte
}

// FileResult reports the per-file outcome of an ingestion batch.
type FileResult struct {
	Name string
	OK   bool
	Err  error
}

// Service is the UI-facing boundary: it wires sessions, ingestion,
// answering and audit logging together.
type Service struct {
	registry *session.Registry
	pipeline *ingest.Pipeline
	answerer *rag.Answerer
	audit    auditlog.Store
}

func NewService(registry *session.Registry, pipeline *ingest.Pipeline, answerer *rag.Answerer, audit auditlog.Store) *Service {
	return &Service{registry: registry, pipeline: pipeline, answerer: answerer, audit: audit}
}

// IngestFiles ingests each file in turn. A failed file never aborts the
// rest of its batch; every successful ingestion replaces the session's
// index wholesale with the freshly built one.
func (s *Service) IngestFiles(ctx context.Context, sessionID string, files []File) ([]FileResult, error) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, session.ErrNotFound
	}

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		idx, err := s.pipeline.Ingest(ctx, f.Name, f.Content)
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("ingestion failed")
			results = append(results, FileResult{Name: f.Name, Err: err})
			continue
		}
		if err := sess.ReplaceIndex(idx); err != nil {
			log.Warn().Err(err).Msg("closing replaced index")
		}
		results = append(results, FileResult{Name: f.Name, OK: true})
	}
	return results, nil
}

// Ask answers a question against the session's index and appends both
// turns to the conversation. When no ingestion happened yet an empty index
// is created lazily, so the model is still invoked and can state that the
// excerpts are insufficient. Audit logging failures never fail the answer.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (models.Message, error) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return models.Message{}, session.ErrNotFound
	}

	idx, err := s.registry.GetOrCreateIndex(sess)
	if err != nil {
		return models.Message{}, err
	}

	sess.Append(models.NewUserMessage(question))
	if sess.Title == models.DefaultTitle {
		sess.Title = deriveTitle(question)
	}

	resp, err := s.answerer.Answer(ctx, question, idx)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.NewAssistantMessage(resp.Content, resp.Sources)
	sess.Append(msg)

	if s.audit != nil {
		if err := s.audit.Log(ctx, question, resp.Content, resp.Sources); err != nil {
			log.Warn().Err(err).Msg("audit log write failed")
		}
	}
	return msg, nil
}

// RecentLogs exposes the audit trail for the admin surface.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]auditlog.Entry, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.Recent(ctx, limit)
}

func deriveTitle(question string) string {
	runes := []rune(question)
	if len(runes) > maxTitleLen {
		runes = runes[:maxTitleLen]
	}
	return string(runes)
}
