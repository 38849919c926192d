package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
	"github.com/shouni/gemini-creative-kit/pkg/imgutil"
)

const (
	// DefaultGeminiImageModel は画像生成に使うマルチモーダルモデルです。
	DefaultGeminiImageModel = "gemini-2.5-flash-image-preview"
	// DefaultGeminiTextModel はスキーマ制約付き JSON 抽出に使うモデルです。
	DefaultGeminiTextModel = "gemini-2.5-flash"

	// 画像のみを出力させる固定のシステム指示
	imageOnlySystemInstruction = "You are a commercial image generation engine. " +
		"Always respond with exactly one generated image. Never respond with prose, " +
		"captions, refusal text or anything other than image data."
)

// GenerativeClient は Gemini SDK との通信面を抽象化する窓口です。
// テストダブルへの差し替えを可能にするため、SDK のクライアントを直接は持ちません。
type GenerativeClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type genaiClient struct {
	client *genai.Client
}

// NewGenerativeClient はサーバー保持の資格情報から実クライアントを構築します。
func NewGenerativeClient(ctx context.Context, apiKey string) (GenerativeClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
	}
	return &genaiClient{client: client}, nil
}

func (c *genaiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// GeminiProvider はデフォルトのマルチモーダル生成バックエンドです。
type GeminiProvider struct {
	client     GenerativeClient
	imageModel string
	textModel  string
}

// NewGeminiProvider は依存関係を注入して GeminiProvider を初期化します。
// モデル名が空の場合はデフォルトを使用します。
func NewGeminiProvider(client GenerativeClient, imageModel, textModel string) (*GeminiProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("client (GenerativeClient) is required")
	}
	if imageModel == "" {
		imageModel = DefaultGeminiImageModel
	}
	if textModel == "" {
		textModel = DefaultGeminiTextModel
	}
	return &GeminiProvider{
		client:     client,
		imageModel: imageModel,
		textModel:  textModel,
	}, nil
}

// Name は ProviderError に載せる識別名を返します。
func (p *GeminiProvider) Name() string { return "gemini" }

// Generate はプロンプトと添付パーツを送信し、最初の候補のインライン画像を
// data: URI の GenerationResult として返します。
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*domain.GenerationResult, error) {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	parts = append(parts, &genai.Part{Text: req.Prompt})
	parts = append(parts, req.Attachments...)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: imageOnlySystemInstruction}},
		},
	}

	resp, err := p.client.GenerateContent(ctx, p.imageModel, []*genai.Content{{Parts: parts}}, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	blob, err := extractInlineImage(resp)
	if err != nil {
		return nil, err
	}
	return &domain.GenerationResult{
		ImageRef: imgutil.ToDataURI(blob.MIMEType, blob.Data),
	}, nil
}

// GenerateJSON はスキーマ制約付きの JSON 出力を要求し、応答テキストを
// 生の JSON のまま返します。schema は nil 許容（自由形式の JSON）です。
func (p *GeminiProvider) GenerateJSON(ctx context.Context, instruction string, schema *genai.Schema, attachments []*genai.Part) (json.RawMessage, error) {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	parts = append(parts, &genai.Part{Text: instruction})
	parts = append(parts, attachments...)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if schema != nil {
		config.ResponseSchema = schema
	}

	resp, err := p.client.GenerateContent(ctx, p.textModel, []*genai.Content{{Parts: parts}}, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	text := collectText(resp)
	if !json.Valid([]byte(text)) {
		// デバッグのため、壊れた応答テキストをそのまま添えて返す
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderJSON, text)
	}
	return json.RawMessage(text), nil
}

// extractInlineImage は最初の候補から最初のインライン画像を取り出します。
// 画像がない場合の失敗は次の段階を踏みます:
// 安全フィルター停止 → ErrProviderRejected（テキストと停止理由を添える）、
// テキストのみ → ErrNoImage にテキストを添える、どちらもなし → ErrNoImage 単体。
func extractInlineImage(resp *genai.GenerateContentResponse) (*genai.Blob, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, ErrNoImage
	}

	candidate := resp.Candidates[0]
	var textFallback strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData, nil
			}
			if part.Text != "" {
				textFallback.WriteString(part.Text)
			}
		}
	}

	text := textFallback.String()
	abnormalStop := candidate.FinishReason != "" &&
		candidate.FinishReason != genai.FinishReasonUnspecified &&
		candidate.FinishReason != genai.FinishReasonStop
	if abnormalStop {
		return nil, fmt.Errorf("%w: generation was blocked by the safety filter (finish reason: %s). Model text: %q",
			ErrProviderRejected, candidate.FinishReason, text)
	}
	if text != "" {
		return nil, fmt.Errorf("%w The model responded with text instead: %q", ErrNoImage, text)
	}
	return nil, ErrNoImage
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
