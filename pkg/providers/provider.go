// Package providers は画像生成バックエンドを統一インターフェースの
// アダプターとして提供します。各呼び出しは 1 往復で完結し、リトライしません。
package providers

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
)

// 失敗の種別。errors.Is で判別できるよう番兵エラーとして定義します。
var (
	// ErrMissingCredential は呼び出し側が必須の資格情報を渡さなかったことを示します。
	ErrMissingCredential = errors.New("missing provider API key")
	// ErrProviderRejected は下流 API の非成功ステータスや安全フィルターによる停止を示します。
	ErrProviderRejected = errors.New("provider rejected the request")
	// ErrNoImage はプロバイダが正常応答したのに画像を含まなかったことを示します。
	// メッセージ文字列はそのまま呼び出し側に提示される契約の一部です。
	ErrNoImage = errors.New("AI did not return an image.")
	// ErrInvalidProviderJSON はスキーマ制約付き応答のテキストが JSON として壊れていたことを示します。
	ErrInvalidProviderJSON = errors.New("provider returned invalid JSON")
)

// Request はプロバイダ非依存の生成要求です。
type Request struct {
	Prompt      string
	Attachments []*genai.Part
	AspectRatio domain.AspectRatio
}

// ImageProvider は両バックエンドが実装する生成能力です。
type ImageProvider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*domain.GenerationResult, error)
}

// ProviderError はどのバックエンドで失敗したかを保持するラッパーです。
// Unwrap により番兵エラーの判別を透過します。
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError はプロバイダ名付きのエラーに包みます。nil はそのまま返します。
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
