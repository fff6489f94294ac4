package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v3"

	"alfredoptarigan/admission-tracker/internal/config"
	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/services"
)

// ingest_documents loads interview rubric PDFs into the vector store used by
// the semantic evaluator. Flags may also be set as INGEST_* env vars.
func main() {
	fs := flag.NewFlagSet("ingest_documents", flag.ExitOnError)
	var (
		dir       = fs.String("dir", "./reference_docs", "directory of PDF rubrics to ingest")
		docType   = fs.String("doc-type", "interview_rubric", "doc_type stored with every passage")
		chunkSize = fs.Int("chunk-size", 1000, "maximum passage length in characters")
		overlap   = fs.Int("overlap", 200, "characters repeated between consecutive passages")
		replace   = fs.Bool("replace", false, "delete previously ingested passages of each file first")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("INGEST")); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	failed, err := ingest(context.Background(), cfg, log, ingestOptions{
		dir:       *dir,
		docType:   *docType,
		chunkSize: *chunkSize,
		overlap:   *overlap,
		replace:   *replace,
	})
	if err != nil {
		log.WithError(err).Error("ingestion aborted", nil)
		os.Exit(1)
	}
	if failed > 0 {
		log.Warn("some documents failed to ingest", map[string]interface{}{"failed": failed})
		os.Exit(1)
	}
	log.Info("all documents ingested", nil)
}

type ingestOptions struct {
	dir       string
	docType   string
	chunkSize int
	overlap   int
	replace   bool
}

func ingest(ctx context.Context, cfg *config.Config, log logger.Logger, opts ingestOptions) (int, error) {
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize gemini: %w", err)
	}

	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize qdrant: %w", err)
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		return 0, fmt.Errorf("failed to initialize collection: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(opts.dir, "*.pdf"))
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", opts.dir, err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no PDF files found in %s", opts.dir)
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker()

	succeeded, failed := 0, 0
	for _, path := range paths {
		docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		fileLog := log.WithFields(map[string]interface{}{"doc_id": docID, "path": path})

		content, err := pdfParser.ExtractTextWithMetaData(path)
		if err != nil {
			fileLog.WithError(err).Error("failed to extract text", nil)
			failed++
			continue
		}

		if opts.replace {
			if err := qdrantService.DeleteDocument(ctx, docID); err != nil {
				fileLog.WithError(err).Error("failed to delete previous passages", nil)
				failed++
				continue
			}
		}

		chunks := chunker.ChunkText(content.Text, opts.chunkSize, opts.overlap)
		stored := 0
		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				fileLog.WithError(err).Warn("failed to embed chunk", map[string]interface{}{"chunk": i})
				continue
			}
			if err := qdrantService.UpsertDocument(ctx, docID, opts.docType, chunk, embedding); err != nil {
				fileLog.WithError(err).Warn("failed to store chunk", map[string]interface{}{"chunk": i})
				continue
			}
			stored++
		}

		if stored < len(chunks) {
			failed++
		} else {
			succeeded++
		}
		fileLog.Info("document ingested", map[string]interface{}{
			"pages":  content.PageCount,
			"chunks": len(chunks),
			"stored": stored,
		})
	}

	log.Info("ingestion summary", map[string]interface{}{"succeeded": succeeded, "failed": failed})
	return failed, nil
}
