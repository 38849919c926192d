// Package dispatch はリクエスト種別ごとの生成オペレーションを束ねる窓口です。
// Prompt Builder とプロバイダアダプターを組み合わせ、1 リクエスト 1 往復で
// 結果または正規化された失敗を返します。リトライは行いません。
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
	"github.com/shouni/gemini-creative-kit/pkg/prompt"
	"github.com/shouni/gemini-creative-kit/pkg/providers"
)

const (
	// 仕上げ（final-render）用の固定強化指示
	finalRenderInstruction = "Enhance this image for final delivery: increase sharpness and clarity, " +
		"correct lighting and color balance, and remove compression artifacts. " +
		"Do not change the composition, subject or text."

	// 解析（analyze）用の固定 OCR / 分類指示
	analyzeInstruction = "Analyze the attached image. Extract all visible text verbatim (OCR), " +
		"identify the main subject, list the dominant colors as hex codes, and classify whether " +
		"the image shows a raw product, packaging, or both."
)

// analyzeSchema は解析結果の固定スキーマです。
var analyzeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"extractedText":  {Type: genai.TypeString},
		"subject":        {Type: genai.TypeString},
		"dominantColors": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"classification": {Type: genai.TypeString, Enum: []string{"product", "packaging", "both"}},
	},
	Required: []string{"extractedText", "subject", "classification"},
}

// GeminiFacade はデフォルトプロバイダに要求する能力です。
type GeminiFacade interface {
	providers.ImageProvider
	GenerateJSON(ctx context.Context, instruction string, schema *genai.Schema, attachments []*genai.Part) (json.RawMessage, error)
}

// ReferenceResolver は参照画像の解決能力です。
type ReferenceResolver interface {
	Resolve(ctx context.Context, ref domain.ReferenceImage) *genai.Part
	ResolveAll(ctx context.Context, refs []domain.ReferenceImage) []*genai.Part
}

// DalleFactory は呼び出し側持ち込みの資格情報から代替プロバイダを組み立てます。
type DalleFactory func(apiKey string) providers.ImageProvider

// Dispatcher は明示的に構築される設定オブジェクトで、グローバル状態を持ちません。
type Dispatcher struct {
	gemini       GeminiFacade
	dalleFactory DalleFactory
	resolver     ReferenceResolver
	logger       *slog.Logger
}

// NewDispatcher は依存関係を注入して Dispatcher を初期化します。
// logger は nil を許容します（slog.Default を使用）。
func NewDispatcher(gemini GeminiFacade, dalleFactory DalleFactory, resolver ReferenceResolver, logger *slog.Logger) (*Dispatcher, error) {
	if gemini == nil {
		return nil, fmt.Errorf("gemini (GeminiFacade) is required")
	}
	if dalleFactory == nil {
		return nil, fmt.Errorf("dalleFactory is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver (ReferenceResolver) is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		gemini:       gemini,
		dalleFactory: dalleFactory,
		resolver:     resolver,
		logger:       logger,
	}, nil
}

// GenerateImage は type=image の生成要求を処理します。
// Prompt Builder の出力を、選択されたちょうど 1 つのバックエンドへ送ります。
func (d *Dispatcher) GenerateImage(ctx context.Context, req domain.CreativeRequest, selector domain.ProviderSelector, dalleAPIKey string) (*domain.GenerationResult, error) {
	text, attachments := prompt.Build(req)
	attachments = append(attachments, d.resolver.ResolveAll(ctx, req.ReferenceImages)...)

	var provider providers.ImageProvider
	pReq := providers.Request{Prompt: text, AspectRatio: req.AspectRatio}

	if domain.NormalizeSelector(string(selector)) == domain.ProviderDalle {
		// 代替バックエンドは text-to-image 専用のため添付は送らない
		provider = d.dalleFactory(dalleAPIKey)
	} else {
		provider = d.gemini
		pReq.Attachments = attachments
	}

	d.logger.InfoContext(ctx, "画像生成をディスパッチします",
		"provider", provider.Name(), "mode", domain.NormalizeMode(string(req.Mode)),
		"aspect_ratio", req.AspectRatio, "attachments", len(pReq.Attachments))

	result, err := provider.Generate(ctx, pReq)
	if err != nil {
		return nil, providers.WrapError(provider.Name(), err)
	}
	return result, nil
}

// FinalRender は type=final-render の仕上げ要求を処理します。
// 固定の強化指示でデフォルトプロバイダを 1 回呼び、強化済み画像を返します。
func (d *Dispatcher) FinalRender(ctx context.Context, image domain.ReferenceImage) (*domain.GenerationResult, error) {
	part := d.resolver.Resolve(ctx, image)
	if part == nil {
		return nil, fmt.Errorf("final-render には読み取り可能な元画像が必要です")
	}

	result, err := d.gemini.Generate(ctx, providers.Request{
		Prompt:      finalRenderInstruction,
		Attachments: []*genai.Part{part},
	})
	if err != nil {
		return nil, providers.WrapError(d.gemini.Name(), err)
	}
	return result, nil
}

// Ideas は type=ideas の構造化抽出要求を処理します。
// 指示文と期待スキーマは呼び出し側がそのまま持ち込みます。
func (d *Dispatcher) Ideas(ctx context.Context, payload domain.IdeasPayload) (json.RawMessage, error) {
	if payload.Instruction == "" {
		return nil, fmt.Errorf("ideas には instruction が必要です")
	}

	var schema *genai.Schema
	if len(payload.Schema) > 0 {
		schema = &genai.Schema{}
		if err := json.Unmarshal(payload.Schema, schema); err != nil {
			return nil, fmt.Errorf("持ち込みスキーマを解釈できませんでした: %w", err)
		}
	}

	raw, err := d.gemini.GenerateJSON(ctx, payload.Instruction, schema, nil)
	if err != nil {
		return nil, providers.WrapError(d.gemini.Name(), err)
	}
	return raw, nil
}

// Analyze は type=analyze の画像解析要求を処理します。
// 固定の OCR / 分類指示と固定スキーマで構造化抽出を 1 回行います。
func (d *Dispatcher) Analyze(ctx context.Context, image domain.ReferenceImage) (json.RawMessage, error) {
	part := d.resolver.Resolve(ctx, image)
	if part == nil {
		return nil, fmt.Errorf("analyze には読み取り可能な画像が必要です")
	}

	raw, err := d.gemini.GenerateJSON(ctx, analyzeInstruction, analyzeSchema, []*genai.Part{part})
	if err != nil {
		return nil, providers.WrapError(d.gemini.Name(), err)
	}
	return raw, nil
}
