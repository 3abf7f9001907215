package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/records-extractor/internal/common"
	"github.com/joseph-ayodele/records-extractor/internal/export"
	"github.com/joseph-ayodele/records-extractor/internal/ingest"
	"github.com/joseph-ayodele/records-extractor/internal/llm"
	"github.com/joseph-ayodele/records-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/records-extractor/internal/pipeline"
	"github.com/joseph-ayodele/records-extractor/internal/server"
	"github.com/joseph-ayodele/records-extractor/internal/tabular"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := common.LoadConfig()

	// Setup structured logger that outputs messages with variables but no time
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	logger.Info("gemini client initialized", "model", cfg.LLM.Model)

	processor := pipeline.NewProcessor(logger,
		ingest.NewTempStore(cfg.Upload.Dir, logger),
		tabular.NewExtractor(tabular.Config{MaxRows: cfg.Tabular.MaxRows}, logger),
		llm.NewExtractor(model, logger),
	)
	srv := server.New(processor, export.NewService(logger), cfg, logger)

	logger.Info("records-extractor starting", "addr", cfg.Addr(), "upload_dir", cfg.Upload.Dir)
	if err := srv.Run(ctx); err != nil {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
	logger.Info("records-extractor stopped")
}
