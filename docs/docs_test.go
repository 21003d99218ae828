package docs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDocTemplate_IsValidJSON(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/expenses/{id}"]; !ok {
		t.Fatalf("missing /expenses/{id} path")
	}
}

func TestDocTemplate_RefsResolve(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	defs, _ := doc["definitions"].(map[string]any)

	var walk func(v any)
	walk = func(v any) {
		switch t2 := v.(type) {
		case map[string]any:
			if ref, ok := t2["$ref"].(string); ok {
				name := strings.TrimPrefix(ref, "#/definitions/")
				if _, found := defs[name]; !found {
					t.Errorf("unresolved $ref %q", ref)
				}
			}
			for _, child := range t2 {
				walk(child)
			}
		case []any:
			for _, child := range t2 {
				walk(child)
			}
		}
	}
	walk(doc["paths"])
	walk(defs)
}
