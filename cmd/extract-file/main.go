package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/records-extractor/internal/common"
	"github.com/joseph-ayodele/records-extractor/internal/llm"
	"github.com/joseph-ayodele/records-extractor/internal/llm/gemini"
)

// extract-file sends one document to the model a number of times and logs how stable
// the normalized record counts are. The last run's records are printed to stdout.
func main() {
	_ = godotenv.Load(".env")
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.Level}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: extract-file <path> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 1
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(times)*cfg.LLM.Timeout+time.Minute)
	defer cancel()

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
	extractor := llm.NewExtractor(model, logger)

	var doc llm.Document
	if doc, err = llm.EncodeDocument(path); err != nil {
		logger.Error("cannot read file", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("file loaded", "path", path, "mime_type", doc.MIMEType, "bytes", doc.Size, "pages", doc.Pages)

	var recs any
	failures := 0
	for i := 1; i <= times; i++ {
		runCtx := common.WithRequestID(ctx, uuid.NewString())
		start := time.Now()
		text, err := extractor.Extract(runCtx, path, llm.ExtractionPrompt)
		if err != nil {
			failures++
			logger.Error("run failed", "run", i, "error", err)
			continue
		}
		out := llm.Normalize(text, logger)
		inv, prod, cust := out.Counts()
		logger.Info("run ok",
			"run", i,
			"invoices", inv,
			"products", prod,
			"customers", cust,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		recs = out
	}
	logger.Info("runs completed", "times", times, "failures", failures)

	if recs == nil {
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		logger.Error("failed to write JSON", "error", err)
		os.Exit(1)
	}
}
