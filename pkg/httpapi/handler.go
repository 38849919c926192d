// Package httpapi はリクエスト封筒の JSON 境界です。
// net/http と AWS Lambda (API Gateway v2) の両方の面で同じ処理を提供します。
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shouni/gemini-creative-kit/pkg/domain"
)

// ErrUnknownRequestType は封筒の type 判別子が未対応であることを示します。
var ErrUnknownRequestType = errors.New("unknown request type")

// Dispatcher は境界層が要求するオペレーション群です。
type Dispatcher interface {
	GenerateImage(ctx context.Context, req domain.CreativeRequest, selector domain.ProviderSelector, dalleAPIKey string) (*domain.GenerationResult, error)
	FinalRender(ctx context.Context, image domain.ReferenceImage) (*domain.GenerationResult, error)
	Ideas(ctx context.Context, payload domain.IdeasPayload) (json.RawMessage, error)
	Analyze(ctx context.Context, image domain.ReferenceImage) (json.RawMessage, error)
}

// Handler は封筒のデコード、ディスパッチ、レスポンス整形を行います。
// configErr が非 nil の間は全ディスパッチを設定エラーで短絡します（縮退運転）。
type Handler struct {
	dispatcher Dispatcher
	configErr  error
	logger     *slog.Logger
}

// NewHandler は依存関係を注入して Handler を初期化します。
// configErr には起動時の設定検証結果を渡します（正常時は nil）。
func NewHandler(dispatcher Dispatcher, configErr error, logger *slog.Logger) (*Handler, error) {
	if dispatcher == nil && configErr == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		configErr:  configErr,
		logger:     logger,
	}, nil
}

// errorBody は失敗レスポンスの形です。エラーは人間可読のメッセージで必ず表に出します。
type errorBody struct {
	Error string `json:"error"`
}

// process は両方のトランスポート面で共有する中核処理です。
// HTTP ステータスとレスポンスボディ（JSON 化可能な値）を返します。
func (h *Handler) process(ctx context.Context, body []byte) (int, any) {
	requestID := uuid.NewString()

	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return http.StatusBadRequest, errorBody{Error: "invalid JSON body"}
	}

	h.logger.InfoContext(ctx, "リクエスト受理", "request_id", requestID, "type", env.Type)

	// サーバー資格情報が無い場合は種別を問わずネットワークを介さずに短絡する
	if h.configErr != nil {
		h.logger.ErrorContext(ctx, "設定エラーにより縮退運転中", "request_id", requestID, "error", h.configErr)
		return http.StatusInternalServerError, errorBody{Error: h.configErr.Error()}
	}

	status, payload := h.route(ctx, env)
	if eb, ok := payload.(errorBody); ok {
		h.logger.ErrorContext(ctx, "リクエスト失敗", "request_id", requestID, "type", env.Type, "status", status, "error", eb.Error)
	} else {
		h.logger.InfoContext(ctx, "リクエスト完了", "request_id", requestID, "type", env.Type, "status", status)
	}
	return status, payload
}

func (h *Handler) route(ctx context.Context, env domain.Envelope) (int, any) {
	switch env.Type {
	case domain.TypeImage:
		var payload domain.ImagePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid image payload: %v", err)}
		}
		result, err := h.dispatcher.GenerateImage(ctx, payload.CreativeRequest,
			domain.NormalizeSelector(payload.Provider), payload.DalleAPIKey)
		if err != nil {
			return http.StatusInternalServerError, errorBody{Error: err.Error()}
		}
		return http.StatusOK, result

	case domain.TypeFinalRender:
		var payload domain.FinalRenderPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid final-render payload: %v", err)}
		}
		result, err := h.dispatcher.FinalRender(ctx, payload.Image)
		if err != nil {
			return http.StatusInternalServerError, errorBody{Error: err.Error()}
		}
		return http.StatusOK, result

	case domain.TypeIdeas:
		var payload domain.IdeasPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid ideas payload: %v", err)}
		}
		raw, err := h.dispatcher.Ideas(ctx, payload)
		if err != nil {
			return http.StatusInternalServerError, errorBody{Error: err.Error()}
		}
		return http.StatusOK, raw

	case domain.TypeAnalyze:
		var payload domain.AnalyzePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid analyze payload: %v", err)}
		}
		raw, err := h.dispatcher.Analyze(ctx, payload.Image)
		if err != nil {
			return http.StatusInternalServerError, errorBody{Error: err.Error()}
		}
		return http.StatusOK, raw

	default:
		return http.StatusBadRequest, errorBody{
			Error: fmt.Sprintf("%s: %q", ErrUnknownRequestType, env.Type),
		}
	}
}

// ServeHTTP は net/http 面です。POST の封筒のみ受け付けます。
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
		// fallthrough to processing
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "could not read request body"})
		return
	}

	status, payload := h.process(r.Context(), body)
	writeJSON(w, status, payload)
}

func setCORSHeaders(header http.Header) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("レスポンスのエンコードに失敗しました", "error", err)
	}
}
