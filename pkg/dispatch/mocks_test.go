package dispatch

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
	"github.com/shouni/gemini-creative-kit/pkg/providers"
)

// --- Mocks ---

// mockGemini は GeminiFacade を実装します。
type mockGemini struct {
	generateFunc     func(ctx context.Context, req providers.Request) (*domain.GenerationResult, error)
	generateJSONFunc func(ctx context.Context, instruction string, schema *genai.Schema, attachments []*genai.Part) (json.RawMessage, error)

	lastRequest     providers.Request
	lastInstruction string
	lastSchema      *genai.Schema
	lastAttachments []*genai.Part
}

func (m *mockGemini) Name() string { return "gemini" }

func (m *mockGemini) Generate(ctx context.Context, req providers.Request) (*domain.GenerationResult, error) {
	m.lastRequest = req
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &domain.GenerationResult{ImageRef: "data:image/png;base64,ZmFrZQ=="}, nil
}

func (m *mockGemini) GenerateJSON(ctx context.Context, instruction string, schema *genai.Schema, attachments []*genai.Part) (json.RawMessage, error) {
	m.lastInstruction = instruction
	m.lastSchema = schema
	m.lastAttachments = attachments
	if m.generateJSONFunc != nil {
		return m.generateJSONFunc(ctx, instruction, schema, attachments)
	}
	return json.RawMessage(`{}`), nil
}

// mockDalle は代替プロバイダの ImageProvider を実装します。
type mockDalle struct {
	apiKey      string
	lastRequest providers.Request
}

func (m *mockDalle) Name() string { return "dall-e" }

func (m *mockDalle) Generate(ctx context.Context, req providers.Request) (*domain.GenerationResult, error) {
	m.lastRequest = req
	if m.apiKey == "" {
		return nil, providers.ErrMissingCredential
	}
	return &domain.GenerationResult{ImageRef: "https://provider.example.com/img.png"}, nil
}

// mockResolver は ReferenceResolver を実装します。
// base64 デコードできる参照だけをダミーパーツにします。
type mockResolver struct{}

func (m *mockResolver) Resolve(ctx context.Context, ref domain.ReferenceImage) *genai.Part {
	if ref.Data != "" {
		data, err := base64.StdEncoding.DecodeString(ref.Data)
		if err != nil {
			return nil
		}
		return &genai.Part{InlineData: &genai.Blob{MIMEType: ref.MimeType, Data: data}}
	}
	if ref.URL != "" {
		return &genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte(ref.URL)}}
	}
	return nil
}

func (m *mockResolver) ResolveAll(ctx context.Context, refs []domain.ReferenceImage) []*genai.Part {
	var parts []*genai.Part
	for _, ref := range refs {
		if ref.Data != "" || ref.URL == "" {
			continue
		}
		if p := m.Resolve(ctx, ref); p != nil {
			parts = append(parts, p)
		}
	}
	return parts
}

func newTestDispatcher(gemini *mockGemini, dalle *mockDalle) *Dispatcher {
	d, err := NewDispatcher(gemini, func(apiKey string) providers.ImageProvider {
		dalle.apiKey = apiKey
		return dalle
	}, &mockResolver{}, nil)
	if err != nil {
		panic(err)
	}
	return d
}
