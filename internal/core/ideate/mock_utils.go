package ideate

import (
	"context"
)

type MockLLMClient struct {
	Response string
	Prompt   string
	Err      error
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
