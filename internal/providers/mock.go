package providers

import (
	"context"
	"strings"
)

// MockProvider returns deterministic text so the chat path can run end to end
// without any external model.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}
	op := strings.ToLower(req.Operation)
	switch {
	case strings.Contains(op, "chat"):
		text := "Deterministic answer grounded in the assembled paper context."
		if strings.Contains(req.Prompt, "No specific supporting content was found") {
			text = "The extracted paper content does not cover this question; only metadata is available."
		}
		return GenerateResponse{Text: text}, info, nil
	case strings.Contains(op, "citation"):
		return GenerateResponse{Text: "Deterministic citation assessment."}, info, nil
	}
	return GenerateResponse{Text: "Mock response."}, info, nil
}
