package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here you go:\n{\"a\":1}", `{"a":1}`},
		{"trailing commentary", "{\"a\":1}\nLet me know if you need more.", `{"a":1}`},
		{"nested objects", `{"a":{"b":{"c":1}}}`, `{"a":{"b":{"c":1}}}`},
		{"two objects are spanned greedily", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`},
		{"no braces", "  sorry, I cannot read this  ", "sorry, I cannot read this"},
		{"fences inside text", "x```json y``` z", "x y z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanModelText(tc.in))
		})
	}
}

func TestCleanModelText_NoFenceMarkersReachParser(t *testing.T) {
	inputs := []string{
		"```json\n{\"Invoices\":[]}\n```",
		"```json```json{}```",
		"prefix ```json\n{\"x\": \"y\"}``` suffix ```",
	}
	for _, in := range inputs {
		assert.NotContains(t, CleanModelText(in), "```")
	}
}

func TestNormalize_FencedJSON(t *testing.T) {
	raw := "```json\n{\"Invoices\":[{\"Serial Number\":\"INV-1\",\"Qty\":2}], \"Products\":[], \"Customers\":[]}\n```"
	out := Normalize(raw, nil)

	require.Len(t, out.Invoices, 1)
	inv := out.Invoices[0].(map[string]any)
	assert.Equal(t, "INV-1", inv["Serial Number"])
	assert.Equal(t, json.Number("2"), inv["Qty"])
	assert.Empty(t, out.Products)
	assert.Empty(t, out.Customers)
}

func TestNormalize_Unparseable(t *testing.T) {
	for _, raw := range []string{
		"I could not find any invoices.",
		"",
		`{"Invoices": [ }`,
		`{"Invoices":[]} and {"Products":[]}`,
		`[{"Serial Number":"1"}]`,
	} {
		out := Normalize(raw, nil)
		assert.NotNil(t, out.Invoices, raw)
		assert.Empty(t, out.Invoices, raw)
		assert.Empty(t, out.Products, raw)
		assert.Empty(t, out.Customers, raw)
	}
}

func TestNormalize_MissingFamiliesDefaultEmpty(t *testing.T) {
	out := Normalize(`{"Products":[{"Product Name":"Pen"}]}`, nil)
	assert.Empty(t, out.Invoices)
	assert.NotNil(t, out.Customers)
	require.Len(t, out.Products, 1)
}

func TestNormalize_TrailingCommentary(t *testing.T) {
	raw := "Sure! Here is the data:\n```json\n{\"Customers\":[{\"Customer Name\":\"Ann\"}]}\n```\nHope this helps."
	out := Normalize(raw, nil)
	require.Len(t, out.Customers, 1)
	assert.Equal(t, "Ann", out.Customers[0].(map[string]any)["Customer Name"])
}

func TestNormalize_KeysAreCaseSensitive(t *testing.T) {
	out := Normalize(`{"invoices":[{"Serial Number":"A"}],"PRODUCTS":[{"Product Name":"Pen"}],"customers":[]}`, nil)
	assert.Empty(t, out.Invoices)
	assert.Empty(t, out.Products)
	assert.Empty(t, out.Customers)

	out = Normalize(`{"invoices":[{"n":1}],"Invoices":[{"n":2},{"n":3}]}`, nil)
	assert.Len(t, out.Invoices, 2)
}

func TestNormalize_FamilyShapes(t *testing.T) {
	out := Normalize(`{"Invoices":{"Serial Number":"A"},"Products":"none","Customers":null}`, nil)
	require.Len(t, out.Invoices, 1)
	assert.Equal(t, "A", out.Invoices[0].(map[string]any)["Serial Number"])
	assert.Empty(t, out.Products)
	assert.Empty(t, out.Customers)
}

func TestNormalize_ResultEncodesAsArrays(t *testing.T) {
	b, err := json.Marshal(Normalize("garbage", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"invoices":[],"products":[],"customers":[]}`, string(b))
}

func TestValidateRecordsJSON(t *testing.T) {
	ok := `{"Customers":[{"Customer Name":"Ann","Phone Number":"1","Total Purchase Amount":12.5}]}`
	require.NoError(t, ValidateRecordsJSON([]byte(ok)))

	missingField := `{"Customers":[{"Customer Name":"Ann"}]}`
	require.Error(t, ValidateRecordsJSON([]byte(missingField)))

	wrongShape := `{"Invoices":"none"}`
	require.Error(t, ValidateRecordsJSON([]byte(wrongShape)))

	require.NoError(t, ValidateRecordsJSON([]byte(`{}`)))
	require.Error(t, ValidateRecordsJSON([]byte(`not json`)))
}
