package domain

import "strings"

// Mode は生成したいクリエイティブの種別です。
type Mode string

const (
	ModePoster       Mode = "poster"
	ModeMockup       Mode = "mockup"
	ModeProductPhoto Mode = "product-photo"
)

// Focus は参照画像のどこを主題に据えるかの指示です。
type Focus string

const (
	FocusPackaging Focus = "packaging"
	FocusProduct   Focus = "product"
	FocusBoth      Focus = "both"
)

// ProviderSelector は生成バックエンドの選択子です。
type ProviderSelector string

const (
	ProviderGemini ProviderSelector = "gemini"
	ProviderDalle  ProviderSelector = "dalle"
)

// AspectRatio は "1:1" "4:5" "9:16" "16:9" のいずれかを想定した文字列です。
// 未知の値も保持はされ、各参照側がフォールバックを適用します。
type AspectRatio string

// ReferenceImage は生成の条件付けに使う参照画像です。
// Data(base64) と URL のどちらか一方を指定します。両方ある場合は Data を優先します。
type ReferenceImage struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64 エンコード済みバイト列
	URL      string `json:"url"`  // https:// または gs://
}

// CreativeRequest は 1 回の画像生成要求です。リクエスト毎に構築し使い捨てます。
type CreativeRequest struct {
	Mode             Mode             `json:"mode"`
	Prompt           string           `json:"prompt"`
	PosterHeadline   string           `json:"posterHeadline,omitempty"`
	MockupType       string           `json:"mockupType,omitempty"`
	BrandName        string           `json:"brandName,omitempty"`
	BrandDescription string           `json:"brandDescription,omitempty"`
	AspectRatio      AspectRatio      `json:"aspectRatio"`
	Focus            Focus            `json:"focus"`
	ReferenceImages  []ReferenceImage `json:"referenceImages,omitempty"`
}

// GenerationResult は正規化された生成結果です。
// ImageRef は data: URI（インライン、レスポンスと共に永続）か
// https: URL（プロバイダ保持、期限切れあり）のどちらかで、呼び出し側は不透明な参照として扱います。
type GenerationResult struct {
	ImageRef string `json:"imageRef"`
}

// NormalizeMode は自由入力の mode 文字列をサポート対象の Mode に正規化します。
// 未知の値はデフォルトの product-photo になります。
func NormalizeMode(mode string) Mode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case string(ModePoster):
		return ModePoster
	case string(ModeMockup):
		return ModeMockup
	default:
		return ModeProductPhoto
	}
}

// NormalizeFocus は focus 文字列を正規化します。未知の値は packaging 扱いです。
func NormalizeFocus(focus string) Focus {
	switch strings.ToLower(strings.TrimSpace(focus)) {
	case string(FocusProduct):
		return FocusProduct
	case string(FocusBoth):
		return FocusBoth
	default:
		return FocusPackaging
	}
}

// NormalizeSelector はプロバイダ選択子を正規化します。未知の値は Gemini 扱いです。
func NormalizeSelector(selector string) ProviderSelector {
	if strings.EqualFold(strings.TrimSpace(selector), string(ProviderDalle)) {
		return ProviderDalle
	}
	return ProviderGemini
}
