package llm

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/records-extractor/constants"
	"github.com/joseph-ayodele/records-extractor/internal/entity"
)

var (
	reFence = regexp.MustCompile("```json|```")
	// greedy: first '{' through last '}'
	reObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// CleanModelText strips markdown fences, trims, and isolates the outermost-looking
// JSON object span. Text without braces is returned trimmed.
func CleanModelText(raw string) string {
	s := strings.TrimSpace(reFence.ReplaceAllString(raw, ""))
	if m := reObject.FindString(s); m != "" {
		return m
	}
	return s
}

// Normalize turns free-form model text into the three record families. It never
// fails: unparseable text is logged and yields empty families.
func Normalize(raw string, logger *slog.Logger) entity.Records {
	if logger == nil {
		logger = slog.Default()
	}
	out := entity.NewRecords()

	candidate := CleanModelText(raw)
	obj, err := decodeObject(candidate)
	if err != nil {
		logger.Error("llm.normalize.parse_error", "error", err, "text_len", len(raw))
		return out
	}

	if err := ValidateRecordsJSON([]byte(candidate)); err != nil {
		logger.Warn("llm.normalize.schema_mismatch", "error", err)
	}

	var missing []string
	for _, f := range constants.Families() {
		v, ok := familyValue(obj, f)
		if !ok {
			missing = append(missing, string(f))
		}
		out.Set(f, asSequence(v))
	}
	if len(missing) > 0 {
		logger.Warn("llm.normalize.missing_families", "families", missing)
	}

	inv, prod, cust := out.Counts()
	logger.Info("llm.normalize.ok", "invoices", inv, "products", prod, "customers", cust)
	return out
}

func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after top-level JSON object")
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}

// familyValue looks up f by its exact key only; "invoices" is not "Invoices".
func familyValue(obj map[string]any, f constants.Family) (any, bool) {
	v, ok := obj[string(f)]
	return v, ok
}

// asSequence keeps arrays as-is and wraps a single object; anything else is empty.
func asSequence(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		return []any{t}
	}
	return []any{}
}
