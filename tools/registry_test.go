package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/petasbytes/go-chatbot/tools"
)

func TestRegistry_SingleWebSearchTool(t *testing.T) {
	defs := tools.Registry(&fakeSearcher{}, 2)
	if len(defs) != 1 {
		t.Fatalf("unexpected number of tools: got %d want 1", len(defs))
	}
	if defs[0].Name != tools.WebSearchName {
		t.Fatalf("unexpected tool in registry: %q", defs[0].Name)
	}
	if defs[0].Function == nil || defs[0].Description == "" {
		t.Fatalf("incomplete definition: %+v", defs[0])
	}
}

func TestGenerateSchema_WebSearchInput(t *testing.T) {
	b, err := json.Marshal(tools.WebSearchInputSchema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	var s struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("unmarshal schema: %v\n%s", err, b)
	}
	if s.Type != "object" {
		t.Errorf("type = %q, want object", s.Type)
	}
	if _, ok := s.Properties["query"]; !ok {
		t.Errorf("missing query property: %s", b)
	}
	if _, ok := s.Properties["max_results"]; !ok {
		t.Errorf("missing max_results property: %s", b)
	}
	if len(s.Required) != 1 || s.Required[0] != "query" {
		t.Errorf("required = %v, want [query]", s.Required)
	}
}
