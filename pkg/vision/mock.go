package vision

import (
	"context"
	"sync"
	"time"
)

// Mock implements Analyzer for tests and offline runs.
type Mock struct {
	// AnalyzeFunc is called when Analyze is invoked.
	AnalyzeFunc func(ctx context.Context, image []byte) (*Result, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records an Analyze invocation.
type MockCall struct {
	Bytes int
	Time  time.Time
}

// NewMock creates a mock that describes every image the same way.
func NewMock(description string) *Mock {
	return &Mock{
		AnalyzeFunc: func(ctx context.Context, image []byte) (*Result, error) {
			return &Result{Description: description, Sources: []Source{}}, nil
		},
	}
}

// Analyze records the call and delegates to AnalyzeFunc.
func (m *Mock) Analyze(ctx context.Context, image []byte) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Bytes: len(image), Time: time.Now()})
	fn := m.AnalyzeFunc
	m.mu.Unlock()

	if fn == nil {
		return &Result{Sources: []Source{}}, nil
	}
	return fn(ctx, image)
}

// Calls returns the recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Analyze was called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Analyzer at compile time.
var _ Analyzer = (*Mock)(nil)
