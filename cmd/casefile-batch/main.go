// casefile-batch runs the processing pipeline against local files and writes
// the result as JSON, optionally alongside an XLSX audit workbook.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tunde-oladipo/casefile-audit/internal/common"
	"github.com/tunde-oladipo/casefile-audit/internal/dispatch"
	"github.com/tunde-oladipo/casefile-audit/internal/export"
	"github.com/tunde-oladipo/casefile-audit/internal/ingest"
	"github.com/tunde-oladipo/casefile-audit/internal/llm/openai"
	"github.com/tunde-oladipo/casefile-audit/internal/pipeline"
	"github.com/tunde-oladipo/casefile-audit/internal/store"
)

func main() {
	var (
		pagesJSON   = flag.String("pages", "", "path to a JSON file of extracted pages")
		textDir     = flag.String("text-dir", "", "directory of per-page .txt files, processed in sorted order")
		out         = flag.String("out", "result.json", "path for the result JSON")
		xlsxOut     = flag.String("xlsx", "", "optional path for an XLSX audit workbook")
		dbPath      = flag.String("db", "", "optional sqlite path to persist the run")
		diagnostics = flag.Bool("diagnostics", false, "include per-page classifier diagnostics in the result")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger, *pagesJSON, *textDir, *out, *xlsxOut, *dbPath, *diagnostics); err != nil {
		fmt.Fprintln(os.Stderr, "casefile-batch:", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, pagesJSON, textDir, out, xlsxOut, dbPath string, diagnostics bool) error {
	var (
		pages      []ingest.Page
		sourceName string
		err        error
	)
	switch {
	case pagesJSON != "" && textDir != "":
		return fmt.Errorf("use either -pages or -text-dir, not both")
	case pagesJSON != "":
		pages, err = ingest.FromJSONFile(pagesJSON)
		sourceName = filepath.Base(pagesJSON)
	case textDir != "":
		pages, err = ingest.FromTextDir(textDir)
		sourceName = filepath.Base(textDir)
	default:
		return fmt.Errorf("one of -pages or -text-dir is required")
	}
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages found in input")
	}

	cfg := common.LoadConfig()

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		CallsPerMin: cfg.LLM.CallsPerMin,
	}, logger)

	dispatcher := dispatch.NewDispatcher(extractor, logger)
	processor := pipeline.NewProcessor(logger, dispatcher, cfg.Pipeline.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := processor.ProcessPages(ctx, sourceName, pages, pipeline.Options{
		ValidateFields:         cfg.Pipeline.ValidateFields,
		IncludePageDiagnostics: diagnostics,
	})

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	logger.Info("batch.result.written", "path", out, "segments", res.SegmentsFound)

	if xlsxOut != "" {
		book, err := export.NewService(logger).AuditWorkbook(res)
		if err != nil {
			return fmt.Errorf("build workbook: %w", err)
		}
		if err := os.WriteFile(xlsxOut, book, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		logger.Info("batch.workbook.written", "path", xlsxOut)
	}

	if dbPath != "" {
		st, err := store.Open(dbPath, logger)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		if err := st.SaveRun(ctx, res); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
	}
	return nil
}
