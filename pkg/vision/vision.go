// Package vision sends a captured image to a multimodal completion endpoint and
// turns the reply into a description with optional cited sources.
//
// Example usage:
//
//	client, _ := vision.NewClient(
//	    vision.WithEndpoint("https://toolkit.rork.com/text/llm/"),
//	    vision.WithTimeout(60*time.Second),
//	)
//	defer client.Close()
//
//	result, err := client.Analyze(ctx, jpegBytes)
//	if errors.Is(err, vision.ErrTransport) {
//	    // non-2xx status or network failure
//	}
//	fmt.Println(result.Description)
package vision

import "context"

// Analyzer describes an image.
// Implementations make a single attempt per call and never retry.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*Result, error)
}

// Source is a web page the model cited for its description.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Favicon string `json:"favicon,omitempty"`
}

// Result is the outcome of a successful analysis.
type Result struct {
	// Description is the text shown to the user.
	Description string `json:"description"`

	// Sources is empty unless the model researched the subject.
	Sources []Source `json:"sources"`

	// LatencyMs is the round trip time in milliseconds.
	LatencyMs int64 `json:"latency_ms,omitempty"`
}

// HasSources reports whether the result cites any sources.
func (r *Result) HasSources() bool {
	return r != nil && len(r.Sources) > 0
}
