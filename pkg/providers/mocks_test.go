package providers

import (
	"context"
	"io"
	"net/http"

	"google.golang.org/genai"
)

// --- Mocks ---

// mockGenerativeClient は GenerativeClient を実装します。
type mockGenerativeClient struct {
	generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	lastModel  string
	lastConfig *genai.GenerateContentConfig
	lastParts  []*genai.Part
}

func (m *mockGenerativeClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastConfig = config
	if len(contents) > 0 && contents[0] != nil {
		m.lastParts = contents[0].Parts
	}
	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, contents, config)
	}
	return &genai.GenerateContentResponse{}, nil
}

// inlineImageResponse は 1 枚のインライン画像だけを含む応答を作るヘルパーです。
func inlineImageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
			},
		}},
	}
}

// textResponse はテキストのみの応答を作るヘルパーです。
func textResponse(text string, finishReason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: finishReason,
		}},
	}
}

// mockHTTPClient は httpkit.ClientInterface を実装します。
type mockHTTPClient struct {
	doRequestFunc func(req *http.Request) ([]byte, error)
	lastRequest   *http.Request
	lastBody      []byte
}

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) {
	m.lastRequest = req
	if req.Body != nil {
		defer req.Body.Close()
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	if m.doRequestFunc != nil {
		return m.doRequestFunc(req)
	}
	return nil, nil
}

// インターフェースを満たすための空実装群
func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	return nil
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return nil, nil
}

func (m *mockHTTPClient) IsSafeURL(urlStr string) (bool, error) {
	return true, nil
}

func (m *mockHTTPClient) IsSecureServiceURL(serviceURL string) bool {
	return true
}
