package domain

import "encoding/json"

// RequestType はリクエスト封筒の type 判別子です。
type RequestType string

const (
	TypeImage       RequestType = "image"
	TypeFinalRender RequestType = "final-render"
	TypeIdeas       RequestType = "ideas"
	TypeAnalyze     RequestType = "analyze"
)

// Envelope はトランスポート層から受け取る JSON ボディです。
// Payload の形は Type に依存するため、遅延デコードします。
type Envelope struct {
	Type    RequestType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ImagePayload は type=image のペイロードです。
// DalleAPIKey は呼び出し側が都度持ち込む資格情報で、保存もログ出力もしません。
type ImagePayload struct {
	CreativeRequest
	Provider    string `json:"provider,omitempty"`
	DalleAPIKey string `json:"dalleApiKey,omitempty"`
}

// FinalRenderPayload は type=final-render のペイロードです。
type FinalRenderPayload struct {
	Image ReferenceImage `json:"image"`
}

// IdeasPayload は type=ideas のペイロードです。
// 呼び出し側が指示文と期待する JSON スキーマを丸ごと持ち込みます。
type IdeasPayload struct {
	Instruction string          `json:"instruction"`
	Schema      json.RawMessage `json:"schema,omitempty"`
}

// AnalyzePayload は type=analyze のペイロードです。
type AnalyzePayload struct {
	Image ReferenceImage `json:"image"`
}
