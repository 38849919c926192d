// Package assets は参照画像（base64 / https / gs://）を取得・検証し、
// 生成リクエストに添付できる genai パーツへ変換します。
package assets

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
	"github.com/shouni/gemini-creative-kit/pkg/imgutil"
)

// CompressionQuality は参照画像を再圧縮する際の JPEG 品質です。
const CompressionQuality = 75

// ImageCacher は取得済み参照画像のキャッシュ操作を抽象化するインターフェースです。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Resolver は参照画像の取得と変換を担当するコンポーネントです。
type Resolver struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	cache      ImageCacher
	cacheTTL   time.Duration
}

// NewResolver は依存関係を注入して Resolver を初期化します。
// cache は nil を許容します（キャッシュなし動作）。reader も nil を許容し、
// その場合 gs:// 参照は解決できません。
func NewResolver(httpClient httpkit.ClientInterface, reader remoteio.InputReader, cache ImageCacher, cacheTTL time.Duration) (*Resolver, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &Resolver{
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}, nil
}

// Resolve は 1 件の参照画像をパーツに変換します。
// 取得や変換に失敗した参照は警告ログを残して nil を返し、生成自体は止めません。
func (r *Resolver) Resolve(ctx context.Context, ref domain.ReferenceImage) *genai.Part {
	if ref.Data != "" {
		data, err := base64.StdEncoding.DecodeString(ref.Data)
		if err != nil {
			slog.WarnContext(ctx, "base64参照のデコードに失敗しました", "error", err)
			return nil
		}
		return r.ToPart(data)
	}

	if ref.URL == "" {
		return nil
	}

	if r.cache != nil {
		if cached, found := r.cache.Get(ref.URL); found {
			if data, ok := cached.([]byte); ok {
				return r.ToPart(data)
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", ref.URL, "type", fmt.Sprintf("%T", cached))
		}
	}

	data, err := r.fetch(ctx, ref.URL)
	if err != nil {
		slog.WarnContext(ctx, "参照画像の取得に失敗しました。該当参照を除外して続行します", "url", ref.URL, "error", err)
		return nil
	}

	if imgutil.ShouldCompress(data) {
		if compressed, err := imgutil.CompressToJPEG(data, CompressionQuality); err == nil {
			data = compressed
		}
	}

	if r.cache != nil {
		r.cache.Set(ref.URL, data, r.cacheTTL)
	}
	return r.ToPart(data)
}

// ResolveAll は URL 参照のみをまとめて解決します。
// インライン（base64）参照は Prompt Builder 側で既にパーツ化されている前提です。
func (r *Resolver) ResolveAll(ctx context.Context, refs []domain.ReferenceImage) []*genai.Part {
	var parts []*genai.Part
	for _, ref := range refs {
		if ref.Data != "" || ref.URL == "" {
			continue
		}
		if part := r.Resolve(ctx, ref); part != nil {
			parts = append(parts, part)
		}
	}
	return parts
}

// fetch はスキームに応じて gs:// は InputReader、http(s) は httpkit で取得します。
func (r *Resolver) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "gs://") {
		if r.reader == nil {
			return nil, fmt.Errorf("gs:// 参照を解決する reader が設定されていません: %s", rawURL)
		}
		rc, err := r.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	if safe, err := IsSafeURL(rawURL); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	return r.httpClient.FetchBytes(ctx, rawURL)
}

// ToPart はバイト列を genai.Part (InlineData) に変換します。
// MIME タイプが画像でないものは nil になります。
func (r *Resolver) ToPart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		slog.Warn("MIMEタイプが画像ではないためPartに変換できませんでした", "detected_mime_type", mimeType)
		return nil
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     data,
		},
	}
}
