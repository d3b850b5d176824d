package vision

import "testing"

func TestParseCompletionPlainText(t *testing.T) {
	p := ParseCompletion("A red apple on a table.")
	if p.Kind != PlainText {
		t.Errorf("expected plain text, got %s", p.Kind)
	}
	if p.Description != "A red apple on a table." {
		t.Errorf("unexpected description: %q", p.Description)
	}

	r := p.Result()
	if r.Sources == nil || len(r.Sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %#v", r.Sources)
	}
}

func TestParseCompletionStructured(t *testing.T) {
	p := ParseCompletion(`{"description":"A landmark.","sources":[{"title":"Wiki","url":"https://x"}]}`)
	if p.Kind != Structured {
		t.Fatalf("expected structured, got %s", p.Kind)
	}
	if p.Description != "A landmark." {
		t.Errorf("unexpected description: %q", p.Description)
	}
	if len(p.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(p.Sources))
	}
	if p.Sources[0].Title != "Wiki" || p.Sources[0].URL != "https://x" {
		t.Errorf("unexpected source: %+v", p.Sources[0])
	}
}

func TestParseCompletionEdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		kind        CompletionKind
		description string
		sources     int
	}{
		{
			name:        "structured without sources",
			in:          `{"description":"Just a cat."}`,
			kind:        Structured,
			description: "Just a cat.",
		},
		{
			name:        "surrounding whitespace",
			in:          "\n  {\"description\":\"Padded.\",\"sources\":[]}  \n",
			kind:        Structured,
			description: "Padded.",
		},
		{
			name:        "favicon kept",
			in:          `{"description":"Tower.","sources":[{"title":"A","url":"u","favicon":"f.ico"},{"title":"B","url":"v"}]}`,
			kind:        Structured,
			description: "Tower.",
			sources:     2,
		},
		{
			name:        "sources not a list",
			in:          `{"description":"Bridge.","sources":"none"}`,
			kind:        Structured,
			description: "Bridge.",
		},
		{
			name:        "json without description",
			in:          `{"summary":"nope"}`,
			kind:        PlainText,
			description: `{"summary":"nope"}`,
		},
		{
			name:        "empty description",
			in:          `{"description":""}`,
			kind:        PlainText,
			description: `{"description":""}`,
		},
		{
			name:        "broken json",
			in:          `{"description": "cut off`,
			kind:        PlainText,
			description: `{"description": "cut off`,
		},
		{
			name:        "json array",
			in:          `[1,2,3]`,
			kind:        PlainText,
			description: `[1,2,3]`,
		},
		{
			name:        "non-string description",
			in:          `{"description":42}`,
			kind:        PlainText,
			description: `{"description":42}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseCompletion(tt.in)
			if p.Kind != tt.kind {
				t.Errorf("kind: got %s, want %s", p.Kind, tt.kind)
			}
			if p.Description != tt.description {
				t.Errorf("description: got %q, want %q", p.Description, tt.description)
			}
			if len(p.Sources) != tt.sources {
				t.Errorf("sources: got %d, want %d", len(p.Sources), tt.sources)
			}
		})
	}
}
