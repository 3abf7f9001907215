package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/records-extractor/internal/common"
	"github.com/joseph-ayodele/records-extractor/internal/llm"
)

// generator is the part of genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Model on top of the Gemini API.
type Client struct {
	cfg    Config
	gen    generator
	logger *slog.Logger
}

var _ llm.Model = (*Client)(nil)

// NewClient builds a client once at startup; it is safe for concurrent use.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return newClient(cfg, gc.Models, logger), nil
}

func newClient(cfg Config, gen generator, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, gen: gen, logger: logger}
}

// Generate sends the prompt followed by the inline document and returns the text answer.
func (c *Client) Generate(ctx context.Context, prompt string, doc llm.Document) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if !doc.Empty() {
		data, err := doc.Bytes()
		if err != nil {
			return "", fmt.Errorf("decode document: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, doc.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	c.logger.Debug("gemini.generate.request",
		"req_id", rid,
		"model", c.cfg.Model,
		"parts", len(parts),
	)

	resp, err := c.gen.GenerateContent(ctx, c.cfg.Model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	})
	if err != nil {
		c.logger.Error("gemini.generate.error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		c.logger.Error("gemini.generate.no_candidates", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", errors.New("no candidates in gemini response")
	}

	text := resp.Text()
	c.logger.Info("gemini.generate.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
