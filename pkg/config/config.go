// Package config はサーバー保持の資格情報とモデル設定を環境変数から読み込みます。
// サーバーレス実行環境では設定は環境変数で供給される前提です。
package config

import (
	"errors"
	"os"
	"strings"
)

// ErrServerCredentialMissing はサーバー保持の資格情報が未設定であることを示します。
// このエラーがある間、デフォルトプロバイダへのディスパッチはネットワークを
// 介さずに設定エラーとして短絡されます。
var ErrServerCredentialMissing = errors.New("server configuration error: GEMINI_API_KEY is not set")

// Config はプロセス起動時に 1 度だけ読み込む設定値です。
// 呼び出し側持ち込みの DALL-E キーはリクエスト毎に渡されるため、ここには含めません。
type Config struct {
	GeminiAPIKey     string
	GeminiImageModel string // 空ならプロバイダ側デフォルト
	GeminiTextModel  string // 空ならプロバイダ側デフォルト
}

// FromEnv は環境変数から Config を構築します。
// 資格情報の欠落は ErrServerCredentialMissing として返します。
func FromEnv() (Config, error) {
	cfg := Config{
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiImageModel: strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL")),
		GeminiTextModel:  strings.TrimSpace(os.Getenv("GEMINI_TEXT_MODEL")),
	}
	if cfg.GeminiAPIKey == "" {
		return cfg, ErrServerCredentialMissing
	}
	return cfg, nil
}
