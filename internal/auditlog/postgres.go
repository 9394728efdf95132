package auditlog

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"kb-agent/internal/config"
)

// PostgresStore persists audit entries in a kb_logs table.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg *config.DatabaseConfig) *PostgresStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresStore{db: db}
}

// Init creates the kb_logs table when it does not exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *PostgresStore) Log(ctx context.Context, question, answer string, sources []string) error {
	entry := &Entry{
		Question: question,
		Answer:   answer,
		Sources:  strings.Join(sources, ","),
	}
	_, err := s.db.NewInsert().Model(entry).Exec(ctx)
	return err
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.NewSelect().
		Model(&entries).
		OrderExpr("id DESC").
		Limit(limit).
		Scan(ctx)
	return entries, err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
