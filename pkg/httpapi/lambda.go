package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// HandleAPIGateway は AWS Lambda (API Gateway v2 / Function URL) 面です。
// net/http 面と同じ中核処理を共有します。lambda.Start にそのまま渡せます。
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	headers := map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}

	switch req.RequestContext.HTTP.Method {
	case http.MethodOptions:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
	case http.MethodPost:
		// fallthrough to processing
	default:
		body, _ := json.Marshal(errorBody{Error: "method not allowed"})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Headers:    headers,
			Body:       string(body),
		}, nil
	}

	rawBody := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			body, _ := json.Marshal(errorBody{Error: "could not decode request body"})
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    headers,
				Body:       string(body),
			}, nil
		}
		rawBody = decoded
	}

	status, payload := h.process(ctx, rawBody)
	body, err := json.Marshal(payload)
	if err != nil {
		body, _ = json.Marshal(errorBody{Error: "could not encode response"})
		status = http.StatusInternalServerError
	}

	// 失敗もエラー戻り値ではなくHTTPレスポンスとして返す。Lambda自体は成功させる。
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
