// Package prompt はクリエイティブ要求を 1 本の自然言語指示と
// 添付画像パーツ列に組み立てます。入力のみに依存する純粋関数です。
package prompt

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
)

// aspectRatioLabels はアスペクト比の説明ラベルの固定対応表です。
// 未知のキーは空文字になり、外側テンプレート側が生の比率表記に切り替えます。
var aspectRatioLabels = map[domain.AspectRatio]string{
	"1:1":  "square (1:1)",
	"4:5":  "portrait (4:5)",
	"9:16": "tall portrait (9:16)",
	"16:9": "widescreen (16:9)",
}

// 参照画像の扱いを決めるフォーカス指示。3 種類のうち必ず 1 つだけ付与されます。
const (
	directiveProduct   = "Focus ONLY on the raw product itself shown in the reference images; ignore any packaging."
	directiveBoth      = "Feature BOTH the raw product and its packaging from the reference images together."
	directivePackaging = "Focus on the product in its packaging as shown in the reference images."
)

// AspectRatioLabel は比率キーを説明ラベルに引き当てます。未知キーは空文字です。
func AspectRatioLabel(ratio domain.AspectRatio) string {
	return aspectRatioLabels[ratio]
}

// FocusDirective は focus 値に対応する指示文を返します。
// 未認識の値は packaging と同一の扱いです。
func FocusDirective(focus domain.Focus) string {
	switch domain.NormalizeFocus(string(focus)) {
	case domain.FocusProduct:
		return directiveProduct
	case domain.FocusBoth:
		return directiveBoth
	default:
		return directivePackaging
	}
}

// Build はクリエイティブ要求から最終プロンプト文字列と添付パーツ列を組み立てます。
// URL 参照の解決は I/O を伴うため呼び出し側（dispatch 層）の責務で、
// ここではインライン（base64）参照のみをパーツ化します。
func Build(req domain.CreativeRequest) (string, []*genai.Part) {
	brief := buildBrief(req)

	var b strings.Builder
	b.WriteString(brief)
	b.WriteString("\n\n")
	if label := AspectRatioLabel(req.AspectRatio); label != "" {
		fmt.Fprintf(&b, "The final image MUST have a %s aspect ratio.", label)
	} else {
		fmt.Fprintf(&b, "The final image MUST have a %s aspect ratio.", req.AspectRatio)
	}
	b.WriteString(" Respond with a single image only. Do not include any text, captions or explanations.")

	return b.String(), inlineParts(req.ReferenceImages)
}

func buildBrief(req domain.CreativeRequest) string {
	hasRefs := len(req.ReferenceImages) > 0

	switch domain.NormalizeMode(string(req.Mode)) {
	case domain.ModePoster:
		brief := fmt.Sprintf(
			"Create a striking promotional poster. Creative brief: %s. The poster must prominently feature the headline text: %q.",
			req.Prompt, req.PosterHeadline)
		if hasRefs {
			brief += " " + FocusDirective(req.Focus)
		}
		return brief

	case domain.ModeMockup:
		// モックアップでは参照画像のフォーカス指示は適用しない
		return fmt.Sprintf(
			"Create a photorealistic %s mockup for the brand %q. Brand description: %s.",
			req.MockupType, req.BrandName, req.BrandDescription)

	default:
		// product-photo（デフォルトモード）はフォーカス指示を常に付与する
		brief := fmt.Sprintf(
			"Create a professional studio-quality product photograph. Creative brief: %s.",
			req.Prompt)
		return brief + " " + FocusDirective(req.Focus)
	}
}

// inlineParts は base64 参照を genai のインラインパーツに変換します。
// デコードできない参照と URL のみの参照はここでは読み飛ばします。
func inlineParts(refs []domain.ReferenceImage) []*genai.Part {
	var parts []*genai.Part
	for _, ref := range refs {
		if ref.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(ref.Data)
		if err != nil || len(data) == 0 {
			continue
		}
		mimeType := ref.MimeType
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
		})
	}
	return parts
}
