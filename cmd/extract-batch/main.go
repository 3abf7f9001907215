package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/records-extractor/internal/async"
	"github.com/joseph-ayodele/records-extractor/internal/common"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
	"github.com/joseph-ayodele/records-extractor/internal/export"
	"github.com/joseph-ayodele/records-extractor/internal/extract"
	"github.com/joseph-ayodele/records-extractor/internal/ingest"
	"github.com/joseph-ayodele/records-extractor/internal/llm"
	"github.com/joseph-ayodele/records-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/records-extractor/internal/pipeline"
	"github.com/joseph-ayodele/records-extractor/internal/tabular"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory to extract records from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, JSON to stdout when empty)")
		exts       = flag.String("ext", "", "comma-separated extensions to include (default xlsx,pdf,jpg,jpeg,png)")
		workers    = flag.Int("workers", 4, "files processed concurrently")
		timeout    = flag.Duration("timeout", 3*time.Minute, "per-file processing timeout")
		showHidden = flag.Bool("hidden", false, "include hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	_ = godotenv.Load(".env")
	cfg := common.LoadConfig()

	// Logs go to stderr so stdout stays clean for the JSON result.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Model is optional: without a key spreadsheets still work and other files fail.
	var ai pipeline.AIExtractor = unavailableAI{}
	if cfg.LLM.APIKey != "" {
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
		ai = llm.NewExtractor(model, logger)
		logger.Info("gemini client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("GEMINI_API not configured, only spreadsheets will be extracted")
	}

	processor := pipeline.NewProcessor(logger,
		ingest.NewTempStore(cfg.Upload.Dir, logger),
		tabular.NewExtractor(tabular.Config{MaxRows: cfg.Tabular.MaxRows}, logger),
		ai,
	)

	queue := async.NewQueue[entity.Records](ctx, func(ctx context.Context, job async.Job) (entity.Records, error) {
		ctx = common.WithRequestID(ctx, job.TraceID)
		res, err := processor.Process(ctx, pipeline.Upload{
			Path:     job.Path,
			Filename: filepath.Base(job.Path),
			MIMEType: extract.DetectMIME(job.Path),
		})
		return res.Records, err
	}, logger, async.WithWorkers(*workers), async.WithProcessTimeout(*timeout))

	logger.Info("starting extraction", "dir", *dir, "workers", *workers)
	_, stats, err := ingest.WalkDirectory(ctx, *dir, splitExts(*exts), !*showHidden, func(ctx context.Context, path string) error {
		return queue.Enqueue(ctx, async.Job{Path: path})
	})
	results := queue.Shutdown(ctx)
	if err != nil {
		logger.Error("failed to walk directory", "error", err)
		os.Exit(1)
	}

	// Keep output stable regardless of worker scheduling.
	sort.Slice(results, func(i, j int) bool { return results[i].Job.Path < results[j].Job.Path })

	merged := entity.NewRecords()
	var succeeded, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		succeeded++
		merged.Append(r.Value)
	}

	inv, prod, cust := merged.Counts()
	logger.Info("extraction completed",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", succeeded,
		"failed", failed+int(stats.Failed),
		"invoices", inv,
		"products", prod,
		"customers", cust,
	)

	if *out == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(merged); err != nil {
			logger.Error("failed to write JSON", "error", err)
			os.Exit(1)
		}
		return
	}

	xlsx, err := export.NewService(logger).RecordsXLSX(merged)
	if err != nil {
		logger.Error("failed to build workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("workbook written", "path", *out, "bytes", len(xlsx))
}

func splitExts(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

type unavailableAI struct{}

func (unavailableAI) Extract(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("model not configured: %w", common.ErrExtractionFailed)
}
