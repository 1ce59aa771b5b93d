package response

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParse_DirectJSON(t *testing.T) {
	value, perr := Parse(`  {"status": "completed", "count": 3}  `, nil)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	obj := value.(map[string]any)
	if obj["status"] != "completed" {
		t.Errorf("unexpected status: %v", obj["status"])
	}
}

func TestParse_FencedBlockRoundTrip(t *testing.T) {
	original := map[string]any{
		"verdict": "pass",
		"requirements": []any{
			map[string]any{"requirement_id": "req-1", "satisfied": true},
		},
	}
	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw := "Here is the report you asked for:\n\n```json\n" + string(encoded) + "\n```\n\nLet me know if anything is unclear."

	value, perr := Parse(raw, nil)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	if !reflect.DeepEqual(value, original) {
		t.Errorf("round trip mismatch: %v vs %v", value, original)
	}
}

func TestParse_FencedBlockWithoutLanguageTag(t *testing.T) {
	raw := "result:\n```\n{\"ok\": true}\n```"
	value, perr := Parse(raw, nil)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	if value.(map[string]any)["ok"] != true {
		t.Errorf("unexpected value: %v", value)
	}
}

func TestParse_BracketScanWithEmbeddedBrace(t *testing.T) {
	// The unescaped } inside the string value must not close the object.
	raw := `The output is {"message": "use } carefully", "done": true} as requested.`
	value, perr := Parse(raw, nil)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	obj := value.(map[string]any)
	if obj["message"] != "use } carefully" {
		t.Errorf("embedded brace corrupted extraction: %v", obj["message"])
	}
	if obj["done"] != true {
		t.Errorf("unexpected done: %v", obj["done"])
	}
}

func TestParse_BracketScanWithEscapedQuote(t *testing.T) {
	raw := `noise {"quote": "she said \"hi\" {", "n": 1} trailing`
	value, perr := Parse(raw, nil)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	if value.(map[string]any)["quote"] != `she said "hi" {` {
		t.Errorf("escape handling broken: %v", value)
	}
}

func TestParse_ArrayValue(t *testing.T) {
	raw := "the list is [1, 2, 3] ok"
	value, perr := Parse(raw, nil)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	if len(value.([]any)) != 3 {
		t.Errorf("unexpected array: %v", value)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain prose", "I could not produce any structured output, sorry."},
		{"empty", ""},
		{"unbalanced", `{"open": "never closes"`},
		{"fenced garbage", "```\nnot json at all\n```"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, perr := Parse(tc.raw, nil)
			if perr == nil {
				t.Fatal("expected parse error")
			}
			if perr.Code != ErrInvalidJSON {
				t.Errorf("expected invalid_json, got %s", perr.Code)
			}
		})
	}
}

func TestParse_SchemaMismatch(t *testing.T) {
	_, perr := Parse(`{"unexpected": "shape"}`, ValidateIntentSpec)
	if perr == nil {
		t.Fatal("expected parse error")
	}
	if perr.Code != ErrSchemaMismatch {
		t.Errorf("expected schema_mismatch, got %s", perr.Code)
	}
}

func TestParseInto_TypedTarget(t *testing.T) {
	type report struct {
		Verdict string `json:"verdict"`
	}
	value, perr := ParseInto[report]("```json\n{\"verdict\": \"pass\"}\n```", nil)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	if value.Verdict != "pass" {
		t.Errorf("unexpected verdict: %s", value.Verdict)
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"simple object", `x {"a":1} y`, `{"a":1}`, true},
		{"nested", `{"a":{"b":[1,{"c":2}]}}`, `{"a":{"b":[1,{"c":2}]}}`, true},
		{"array first", `see [1,{"a":"}"}]`, `[1,{"a":"}"}]`, true},
		{"no brackets", "nothing here", "", false},
		{"never closes", `{"a": [1, 2`, "", false},
		{"bracket in string", `{"s": "deep [ } ] {"}`, `{"s": "deep [ } ] {"}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractBalanced(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok: expected %v, got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidateIntentSpec(t *testing.T) {
	valid := `{
		"objective": "do the thing",
		"requirements": [{"id": "req-1", "description": "d", "verification": "v"}],
		"out_of_scope": ["everything else"]
	}`
	if _, perr := Parse(valid, ValidateIntentSpec); perr != nil {
		t.Fatalf("valid spec rejected: %v", perr)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty requirements", `{"objective": "x", "requirements": [], "out_of_scope": ["y"]}`},
		{"missing verification", `{"objective": "x", "requirements": [{"id": "r", "description": "d"}], "out_of_scope": ["y"]}`},
		{"empty out of scope", `{"objective": "x", "requirements": [{"id": "r", "description": "d", "verification": "v"}], "out_of_scope": []}`},
		{"not an object", `[1, 2, 3]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, perr := Parse(tc.raw, ValidateIntentSpec)
			if perr == nil || perr.Code != ErrSchemaMismatch {
				t.Errorf("expected schema_mismatch, got %v", perr)
			}
		})
	}
}

func TestValidateExecutionOutput(t *testing.T) {
	completed := `{"status": "completed", "artifacts": [], "tool_log": []}`
	if _, perr := Parse(completed, ValidateExecutionOutput); perr != nil {
		t.Fatalf("valid output rejected: %v", perr)
	}

	failed := `{"status": "failed", "error": {"type": "tool_failure", "detail": "x"}, "tool_log": []}`
	if _, perr := Parse(failed, ValidateExecutionOutput); perr != nil {
		t.Fatalf("valid failure rejected: %v", perr)
	}

	partial := `{"status": "partial", "tool_log": []}`
	if _, perr := Parse(partial, ValidateExecutionOutput); perr == nil || perr.Code != ErrSchemaMismatch {
		t.Errorf("partial status must be rejected, got %v", perr)
	}
}
