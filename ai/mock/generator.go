package mock

import (
	"context"
	"sync"

	"github.com/poiesic/energuide/ai"
)

// MockGenerator is a test double for ai.Generator.
// It records every prompt it receives.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate returns Answer.
	GenerateFunc func(ctx context.Context, prompt ai.Prompt) (string, error)

	// Answer is the canned reply used when GenerateFunc is nil.
	Answer string

	mu      sync.Mutex
	prompts []ai.Prompt
}

// NewMockGenerator creates a mock generator that always answers with answer.
func NewMockGenerator(answer string) *MockGenerator {
	return &MockGenerator{Answer: answer}
}

// Generate records the prompt and returns the canned or injected answer.
func (m *MockGenerator) Generate(ctx context.Context, prompt ai.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return m.Answer, nil
}

// Prompts returns a copy of the prompts received so far.
func (m *MockGenerator) Prompts() []ai.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.Prompt, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
