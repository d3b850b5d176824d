package vision

import (
	"encoding/json"
	"strings"
)

// CompletionKind tags how a completion was interpreted.
type CompletionKind int

const (
	// PlainText means the completion is the description itself.
	PlainText CompletionKind = iota

	// Structured means the completion was a JSON object with a description.
	Structured
)

// String returns the kind name.
func (k CompletionKind) String() string {
	if k == Structured {
		return "structured"
	}
	return "plain_text"
}

// ParsedCompletion is a completion decided once into one of two shapes.
type ParsedCompletion struct {
	Kind        CompletionKind
	Description string
	Sources     []Source
}

// Result converts the parsed completion into a Result. Sources is never nil.
func (p ParsedCompletion) Result() *Result {
	sources := p.Sources
	if sources == nil {
		sources = []Source{}
	}
	return &Result{Description: p.Description, Sources: sources}
}

type structuredCompletion struct {
	Description string          `json:"description"`
	Sources     json.RawMessage `json:"sources"`
}

// ParseCompletion interprets the model's completion text.
//
// A JSON object with a non-empty string description is Structured; a sources
// field that is not a list of sources is treated as empty. Anything else,
// including JSON without a description, is PlainText carrying the text verbatim.
func ParseCompletion(text string) ParsedCompletion {
	plain := ParsedCompletion{Kind: PlainText, Description: text}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return plain
	}

	var s structuredCompletion
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return plain
	}
	if s.Description == "" {
		return plain
	}

	var sources []Source
	if len(s.Sources) > 0 {
		if err := json.Unmarshal(s.Sources, &sources); err != nil {
			sources = nil
		}
	}

	return ParsedCompletion{
		Kind:        Structured,
		Description: s.Description,
		Sources:     sources,
	}
}
