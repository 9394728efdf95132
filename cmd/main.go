package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kb-agent/internal/auditlog"
	"kb-agent/internal/chat"
	"kb-agent/internal/config"
	"kb-agent/internal/embedding"
	"kb-agent/internal/helper"
	"kb-agent/internal/ingest"
	"kb-agent/internal/llmservice"
	"kb-agent/internal/rag"
	"kb-agent/internal/session"
	"kb-agent/internal/vectorindex"
)

const configFilePath = "./configs/config.yaml"

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// .env keeps API keys out of the yaml config
	_ = godotenv.Load()

	var files fileList
	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Var(&files, "file", "Path to a document file (repeatable)")
	query := flag.String("query", "", "Question to be answered")
	logCount := flag.Int("logs", 0, "Show the N most recent audit log entries")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if len(files) == 0 && *query == "" && *logCount == 0 {
		log.Fatal().Msg("Provide documents with -file and a question with -query")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	run(context.Background(), cfg, files, *query, *logCount)
}

func run(ctx context.Context, cfg *config.Config, files fileList, query string, logCount int) {
	provider, err := embedding.NewOllamaProvider(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	indexOpts := vectorindex.Options{PersistDir: cfg.RAG.PersistDir}
	registry := session.NewRegistry(indexOpts)
	pipeline := ingest.NewPipeline(provider, cfg.RAG.ChunkSize, indexOpts)
	audit := newAuditStore(ctx, cfg)

	var answerer *rag.Answerer
	if query != "" {
		client, err := llmservice.NewClient(&cfg.LLM)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing llm client")
		}
		answerer = rag.NewAnswerer(provider, client, cfg.RAG.TopK)
	}

	svc := chat.NewService(registry, pipeline, answerer, audit)

	sess, err := registry.NewSession()
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating session")
	}
	defer registry.Remove(sess.ID)

	if len(files) > 0 {
		batch := make([]chat.File, 0, len(files))
		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				log.Error().Err(err).Str("file", path).Msg("Error reading file")
				continue
			}
			batch = append(batch, chat.File{Name: path, Content: content})
		}
		results, err := svc.IngestFiles(ctx, sess.ID, batch)
		if err != nil {
			log.Fatal().Err(err).Msg("Error ingesting files")
		}
		for _, res := range results {
			if res.OK {
				log.Info().Str("file", res.Name).Msg("Ingested")
			} else {
				log.Error().Err(res.Err).Str("file", res.Name).Msg("Failed to ingest")
			}
		}
	}

	if query != "" {
		msg, err := svc.Ask(ctx, sess.ID, query)
		if err != nil {
			log.Fatal().Err(err).Msg("Error answering query")
		}

		log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", query)

		log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", strings.Join(msg.Sources, "\n"))

		log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", msg.Content)
	}

	if logCount > 0 {
		entries, err := svc.RecentLogs(ctx, logCount)
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading audit logs")
		}
		helper.PrettyPrint(entries)
	}
}

func newAuditStore(ctx context.Context, cfg *config.Config) auditlog.Store {
	memory := auditlog.NewMemoryStore(0)
	if cfg.Database.DSN == "" {
		return memory
	}

	pg := auditlog.NewPostgresStore(&cfg.Database)
	if err := pg.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("Audit database unreachable, logging in memory only")
		return memory
	}
	return auditlog.NewFallbackStore(pg, memory)
}
