package auditlog

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Entry is one logged question/answer exchange.
type Entry struct {
	bun.BaseModel `bun:"table:kb_logs,alias:l"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Question  string    `bun:"question,notnull"`
	Answer    string    `bun:"answer,notnull"`
	Sources   string    `bun:"sources"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Store records question/answer exchanges. A Store failure is an
// observable but ignorable outcome: callers must never fail the
// user-facing operation because logging did.
type Store interface {
	Log(ctx context.Context, question, answer string, sources []string) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
