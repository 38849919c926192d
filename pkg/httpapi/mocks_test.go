package httpapi

import (
	"context"
	"encoding/json"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
)

// --- Mocks ---

// mockDispatcher は Dispatcher を実装します。
type mockDispatcher struct {
	generateFunc    func(ctx context.Context, req domain.CreativeRequest, selector domain.ProviderSelector, dalleAPIKey string) (*domain.GenerationResult, error)
	finalRenderFunc func(ctx context.Context, image domain.ReferenceImage) (*domain.GenerationResult, error)
	ideasFunc       func(ctx context.Context, payload domain.IdeasPayload) (json.RawMessage, error)
	analyzeFunc     func(ctx context.Context, image domain.ReferenceImage) (json.RawMessage, error)

	lastSelector domain.ProviderSelector
	lastDalleKey string
}

func (m *mockDispatcher) GenerateImage(ctx context.Context, req domain.CreativeRequest, selector domain.ProviderSelector, dalleAPIKey string) (*domain.GenerationResult, error) {
	m.lastSelector = selector
	m.lastDalleKey = dalleAPIKey
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req, selector, dalleAPIKey)
	}
	return &domain.GenerationResult{ImageRef: "data:image/png;base64,ZmFrZQ=="}, nil
}

func (m *mockDispatcher) FinalRender(ctx context.Context, image domain.ReferenceImage) (*domain.GenerationResult, error) {
	if m.finalRenderFunc != nil {
		return m.finalRenderFunc(ctx, image)
	}
	return &domain.GenerationResult{ImageRef: "data:image/png;base64,ZW5oYW5jZWQ="}, nil
}

func (m *mockDispatcher) Ideas(ctx context.Context, payload domain.IdeasPayload) (json.RawMessage, error) {
	if m.ideasFunc != nil {
		return m.ideasFunc(ctx, payload)
	}
	return json.RawMessage(`{"ideas":[]}`), nil
}

func (m *mockDispatcher) Analyze(ctx context.Context, image domain.ReferenceImage) (json.RawMessage, error) {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, image)
	}
	return json.RawMessage(`{"subject":"unknown"}`), nil
}
