package llm

import (
	"context"
	"encoding/base64"
)

// Document is a file prepared for the model: base64 data tagged with a MIME type.
// The zero value is the empty payload used for file types the model is not given.
type Document struct {
	MIMEType string
	Data     string // base64 (std encoding)
	Path     string
	Size     int64
	Pages    int // PDFs only; 0 when unknown
}

// Empty reports whether the document carries no payload.
func (d Document) Empty() bool {
	return d.MIMEType == "" || d.Data == ""
}

// Bytes decodes the payload.
func (d Document) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(d.Data)
}

// Model is the external generative model. Implementations send the prompt first
// and the document second; an empty document is sent as the prompt alone.
type Model interface {
	Generate(ctx context.Context, prompt string, doc Document) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string, doc Document) (string, error)

func (f ModelFunc) Generate(ctx context.Context, prompt string, doc Document) (string, error) {
	return f(ctx, prompt, doc)
}
