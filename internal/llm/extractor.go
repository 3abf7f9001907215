package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/records-extractor/internal/common"
)

// Extractor sends a document and the instruction prompt to the model and returns its raw text.
type Extractor struct {
	model  Model
	logger *slog.Logger
}

func NewExtractor(model Model, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{model: model, logger: logger}
}

// Extract encodes path and asks the model to extract records using prompt.
// Failures are logged with their cause and reported as common.ErrExtractionFailed.
// There is no retry; the only deadline is the one carried by ctx or the model transport.
func (e *Extractor) Extract(ctx context.Context, path, prompt string) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	doc, err := EncodeDocument(path)
	if err != nil {
		e.logger.Error("llm.extract.encode_error", "req_id", rid, "path", path, "error", err)
		return "", common.ErrExtractionFailed
	}
	if doc.Empty() {
		e.logger.Warn("llm.extract.empty_document", "req_id", rid, "path", path,
			"hint", "unsupported extension; model receives the prompt only")
	}

	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"mime_type", doc.MIMEType,
		"bytes", doc.Size,
		"pages", doc.Pages,
		"prompt_len", len(prompt),
	)

	text, err := e.model.Generate(ctx, prompt, doc)
	if err != nil {
		e.logger.Error("llm.extract.model_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.ErrExtractionFailed
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"response_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
