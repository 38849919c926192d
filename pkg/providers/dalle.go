package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
)

const (
	// DefaultDalleEndpoint は OpenAI 画像生成 API のエンドポイントです。
	DefaultDalleEndpoint = "https://api.openai.com/v1/images/generations"
	// DefaultDalleModel は使用する画像モデルです。
	DefaultDalleModel = "dall-e-3"

	dalleDefaultSize = "1024x1024"
)

// dalleSizes はアスペクト比からモデルがサポートする最近傍の出力サイズへの固定対応表です。
// DALL-E 3 は 1024x1024 / 1792x1024 / 1024x1792 の 3 サイズのみサポートします。
var dalleSizes = map[domain.AspectRatio]string{
	"1:1":  "1024x1024",
	"4:5":  "1024x1792",
	"9:16": "1024x1792",
	"16:9": "1792x1024",
}

// DalleSize は比率を出力サイズに引き当てます。未知の比率はデフォルトサイズです。
func DalleSize(ratio domain.AspectRatio) string {
	if size, ok := dalleSizes[ratio]; ok {
		return size
	}
	return dalleDefaultSize
}

// dalleRequest / dalleResponse は DALL-E API のワイヤ形式です。
type dalleRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type dalleResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// DalleProvider は代替のテキスト専用生成バックエンドです。
// 資格情報は呼び出し側がリクエスト毎に持ち込むため、インスタンスも
// リクエスト毎に安価に構築します。保存は一切しません。
type DalleProvider struct {
	httpClient httpkit.ClientInterface
	apiKey     string
	endpoint   string
	model      string
}

// NewDalleProvider は依存関係を注入して DalleProvider を初期化します。
// apiKey の検証はネットワーク呼び出し前の Generate 冒頭で行います。
func NewDalleProvider(httpClient httpkit.ClientInterface, apiKey string) (*DalleProvider, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &DalleProvider{
		httpClient: httpClient,
		apiKey:     apiKey,
		endpoint:   DefaultDalleEndpoint,
		model:      DefaultDalleModel,
	}, nil
}

// Name は ProviderError に載せる識別名を返します。
func (p *DalleProvider) Name() string { return "dall-e" }

// Generate は単一のテキストプロンプトを送信し、最初のリモート URL を返します。
// このバックエンドは text-to-image 専用のため添付パーツは送信しません。
func (p *DalleProvider) Generate(ctx context.Context, req Request) (*domain.GenerationResult, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return nil, ErrMissingCredential
	}

	payload, err := json.Marshal(dalleRequest{
		Model:  p.model,
		Prompt: req.Prompt,
		N:      1,
		Size:   DalleSize(req.AspectRatio),
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	body, err := p.httpClient.DoRequest(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	var resp dalleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unexpected response body: %v", ErrProviderRejected, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderRejected, resp.Error.Message)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, fmt.Errorf("%w: response did not include an image URL", ErrProviderRejected)
	}

	// リモート URL はプロバイダ保持で期限切れがあり得る。呼び出し側は不透明参照として扱う。
	return &domain.GenerationResult{ImageRef: resp.Data[0].URL}, nil
}
