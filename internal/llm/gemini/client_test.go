package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/records-extractor/internal/llm"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: s}}},
		}},
	}
}

func TestGenerate_PromptThenDocument(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(`{"Invoices":[]}`)}
	c := newClient(Config{Model: "gemini-test"}.withDefaults(), gen, nil)

	payload := []byte("jpeg-bytes")
	doc := llm.Document{MIMEType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(payload)}

	text, err := c.Generate(context.Background(), "extract please", doc)
	require.NoError(t, err)
	assert.Equal(t, `{"Invoices":[]}`, text)
	assert.Equal(t, "gemini-test", gen.model)

	require.Len(t, gen.contents, 1)
	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "extract please", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/jpeg", parts[1].InlineData.MIMEType)
	assert.Equal(t, payload, parts[1].InlineData.Data)
}

func TestGenerate_EmptyDocumentSendsPromptOnly(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("nothing")}
	c := newClient(Config{}.withDefaults(), gen, nil)

	_, err := c.Generate(context.Background(), "p", llm.Document{})
	require.NoError(t, err)
	require.Len(t, gen.contents[0].Parts, 1)
	assert.Equal(t, "gemini-1.5-flash", gen.model)
}

func TestGenerate_Errors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	_, err := newClient(Config{}.withDefaults(), gen, nil).Generate(context.Background(), "p", llm.Document{})
	require.Error(t, err)

	gen = &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	_, err = newClient(Config{}.withDefaults(), gen, nil).Generate(context.Background(), "p", llm.Document{})
	require.Error(t, err)

	bad := llm.Document{MIMEType: "image/jpeg", Data: "%%%not-base64"}
	_, err = newClient(Config{}.withDefaults(), &fakeGenerator{resp: textResponse("x")}, nil).Generate(context.Background(), "p", bad)
	require.Error(t, err)
}

func TestNewClient_RequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API", "")
	_, err := NewClient(context.Background(), Config{}, nil)
	require.Error(t, err)
}
