package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/common"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
	"github.com/joseph-ayodele/records-extractor/internal/extract"
	"github.com/joseph-ayodele/records-extractor/internal/ingest"
	"github.com/joseph-ayodele/records-extractor/internal/llm"
)

// TabularExtractor reads spreadsheets by fixed cell positions.
type TabularExtractor interface {
	ExtractFile(ctx context.Context, path string) (entity.Records, error)
}

// AIExtractor returns the model's raw answer for a document.
type AIExtractor interface {
	Extract(ctx context.Context, path, prompt string) (string, error)
}

// Upload is a file already stored on disk.
type Upload struct {
	Path     string
	Filename string
	MIMEType string
}

// Incoming is a file still attached to a request. A nil Body means no file was sent.
type Incoming struct {
	Filename string
	MIMEType string
	Body     io.Reader
}

// Result is what a processed document produced.
type Result struct {
	Strategy constants.Strategy
	Records  entity.Records
}

// Processor runs the upload pipeline: classify, extract, normalize (AI path only), clean up.
type Processor struct {
	Logger  *slog.Logger
	Store   *ingest.TempStore
	Tabular TabularExtractor
	AI      AIExtractor
	Prompt  string
}

func NewProcessor(logger *slog.Logger, store *ingest.TempStore, tabular TabularExtractor, ai AIExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:  logger,
		Store:   store,
		Tabular: tabular,
		AI:      ai,
		Prompt:  llm.ExtractionPrompt,
	}
}

// Handle stores an incoming file, processes it, and removes it again on every exit path.
func (p *Processor) Handle(ctx context.Context, in Incoming) (Result, error) {
	if in.Body == nil {
		p.stage(ctx, constants.StageReceived, "error", common.ErrNoFile)
		return Result{}, common.ErrNoFile
	}

	var res Result
	err := p.Store.With(in.Filename, in.Body, func(tf *ingest.TempFile) error {
		var err error
		res, err = p.Process(ctx, Upload{Path: tf.Path, Filename: in.Filename, MIMEType: in.MIMEType})
		return err
	})
	p.stage(ctx, constants.StageCleaned, "filename", in.Filename)
	return res, err
}

// Process runs classification and extraction for a stored file. It does not delete the file.
func (p *Processor) Process(ctx context.Context, up Upload) (Result, error) {
	start := time.Now()
	if up.Path == "" {
		p.stage(ctx, constants.StageReceived, "error", common.ErrNoFile)
		return Result{}, common.ErrNoFile
	}
	p.stage(ctx, constants.StageReceived, "filename", up.Filename, "mime_type", up.MIMEType)

	strategy := extract.Classify(up.MIMEType)
	p.stage(ctx, constants.StageClassified, "strategy", strategy)

	var out entity.Records
	switch strategy {
	case constants.StrategyTabular:
		recs, err := p.Tabular.ExtractFile(ctx, up.Path)
		if err != nil {
			p.Logger.Error("pipeline.tabular.failed", "req_id", common.RequestIDFromContext(ctx), "error", err)
			return Result{Strategy: strategy}, fmt.Errorf("tabular extract: %w", err)
		}
		out = recs
		p.stage(ctx, constants.StageExtracted, "strategy", strategy)

	default:
		text, err := p.AI.Extract(ctx, up.Path, p.Prompt)
		if err != nil {
			p.Logger.Error("pipeline.ai.failed", "req_id", common.RequestIDFromContext(ctx), "error", err)
			return Result{Strategy: strategy}, err
		}
		p.stage(ctx, constants.StageExtracted, "strategy", strategy, "text_len", len(text))

		out = llm.Normalize(text, p.Logger)
		p.stage(ctx, constants.StageNormalized)
	}

	inv, prod, cust := out.Counts()
	p.Logger.Info("pipeline.process.ok",
		"req_id", common.RequestIDFromContext(ctx),
		"strategy", strategy,
		"invoices", inv,
		"products", prod,
		"customers", cust,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{Strategy: strategy, Records: out}, nil
}

func (p *Processor) stage(ctx context.Context, s constants.Stage, args ...any) {
	attrs := append([]any{"req_id", common.RequestIDFromContext(ctx), "stage", s}, args...)
	p.Logger.Debug("pipeline.stage", attrs...)
}
