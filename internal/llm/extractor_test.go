package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/common"
)

type recordingModel struct {
	calls  int
	prompt string
	doc    Document
	text   string
	err    error
}

func (m *recordingModel) Generate(_ context.Context, prompt string, doc Document) (string, error) {
	m.calls++
	m.prompt = prompt
	m.doc = doc
	return m.text, m.err
}

func TestExtractor_PassesPromptAndDocument(t *testing.T) {
	model := &recordingModel{text: `{"Invoices":[]}`}
	path := writeFile(t, "scan.png", []byte("png-bytes"))

	text, err := NewExtractor(model, nil).Extract(context.Background(), path, ExtractionPrompt)
	require.NoError(t, err)
	assert.Equal(t, `{"Invoices":[]}`, text)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, ExtractionPrompt, model.prompt)
	assert.Equal(t, constants.MIMEJPEG, model.doc.MIMEType)
}

func TestExtractor_UnsupportedTypeStillCallsModel(t *testing.T) {
	model := &recordingModel{text: "no idea"}
	path := writeFile(t, "notes.txt", []byte("plain text"))

	text, err := NewExtractor(model, nil).Extract(context.Background(), path, ExtractionPrompt)
	require.NoError(t, err)
	assert.Equal(t, "no idea", text)
	assert.Equal(t, 1, model.calls)
	assert.True(t, model.doc.Empty())
}

func TestExtractor_ModelErrorIsHidden(t *testing.T) {
	cause := errors.New("quota exceeded for key abc")
	model := &recordingModel{err: cause}
	path := writeFile(t, "scan.pdf", []byte("%PDF"))

	_, err := NewExtractor(model, nil).Extract(context.Background(), path, ExtractionPrompt)
	require.ErrorIs(t, err, common.ErrExtractionFailed)
	assert.NotErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "quota")
}

func TestExtractor_MissingFile(t *testing.T) {
	model := &recordingModel{}
	_, err := NewExtractor(model, nil).Extract(context.Background(), "/definitely/not/here.png", ExtractionPrompt)
	require.ErrorIs(t, err, common.ErrExtractionFailed)
	assert.Zero(t, model.calls)
}

func TestModelFunc(t *testing.T) {
	var got string
	m := ModelFunc(func(_ context.Context, prompt string, _ Document) (string, error) {
		got = prompt
		return "ok", nil
	})
	out, err := m.Generate(context.Background(), "p", Document{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "p", got)
}

func TestExtractionPrompt(t *testing.T) {
	for _, want := range []string{"Invoices", "Products", "Customers", "Serial Number", "Price with Tax", "Total Purchase Amount"} {
		assert.Contains(t, ExtractionPrompt, want)
	}
}
