package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
)

// BuildRecordsJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the model's
// answer: three optional arrays of objects whose fields must all be present.
// Field values are loosely typed; models mix numbers and strings freely.
func BuildRecordsJSONSchema() map[string]any {
	families := map[constants.Family][]string{
		constants.Invoices:  entity.InvoiceRecord{}.Columns(),
		constants.Products:  entity.ProductRecord{}.Columns(),
		constants.Customers: entity.CustomerRecord{}.Columns(),
	}

	props := map[string]any{}
	for f, fields := range families {
		itemProps := map[string]any{}
		for _, field := range fields {
			itemProps[field] = scalarProp()
		}
		props[string(f)] = map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": itemProps,
				"required":   fields,
			},
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

func scalarProp() map[string]any {
	return map[string]any{
		"type": []string{"string", "number", "boolean", "null"},
	}
}

var compiledRecordsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(BuildRecordsJSONSchema())
})

// ValidateRecordsJSON validates data against BuildRecordsJSONSchema.
func ValidateRecordsJSON(data []byte) error {
	schema, err := compiledRecordsSchema()
	if err != nil {
		return err
	}
	return validate(schema, data)
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
