package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tunde-oladipo/casefile-audit/internal/common"
	"github.com/tunde-oladipo/casefile-audit/internal/dispatch"
	"github.com/tunde-oladipo/casefile-audit/internal/export"
	"github.com/tunde-oladipo/casefile-audit/internal/llm/openai"
	"github.com/tunde-oladipo/casefile-audit/internal/pipeline"
	"github.com/tunde-oladipo/casefile-audit/internal/server"
	"github.com/tunde-oladipo/casefile-audit/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("casefiled.config.invalid", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		logger.Error("casefiled.store.open_failed", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

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

	srv := server.New(server.Params{
		Processor: processor,
		Store:     st,
		Exporter:  export.NewService(logger),
		Logger:    logger,
		Options: pipeline.Options{
			ValidateFields: cfg.Pipeline.ValidateFields,
		},
		MaxRequestMB: int(cfg.Server.MaxRequestMB),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cfg.Server.Addr, cfg.Server.RequestTimeout); err != nil {
		logger.Error("casefiled.server.failed", "error", err)
		os.Exit(1)
	}
	logger.Info("casefiled.shutdown.complete")
}
