package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// lambdaEvent covers the fields shared by API Gateway v1 proxy events and v2
// HTTP API / Function URL events. Body is kept raw because direct invocations
// may pass an already-parsed JSON object instead of a string.
type lambdaEvent struct {
	Version         string            `json:"version"`
	HTTPMethod      string            `json:"httpMethod"`
	Headers         map[string]string `json:"headers"`
	Body            json.RawMessage   `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
	RequestContext  struct {
		HTTP *struct {
			Method   string `json:"method"`
			SourceIP string `json:"sourceIp"`
		} `json:"http"`
		Identity *struct {
			SourceIP string `json:"sourceIp"`
		} `json:"identity"`
	} `json:"requestContext"`
}

// DecodeLambdaEvent turns a raw Lambda payload into a Request.
func DecodeLambdaEvent(raw json.RawMessage) (Request, error) {
	var evt lambdaEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return Request{}, fmt.Errorf("gateway: decode lambda event: %w", err)
	}

	req := Request{Headers: evt.Headers}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}

	if h := evt.RequestContext.HTTP; h != nil {
		req.Method = h.Method
		req.SourceIP = h.SourceIP
	}
	if req.Method == "" {
		req.Method = evt.HTTPMethod
	}
	if req.SourceIP == "" && evt.RequestContext.Identity != nil {
		req.SourceIP = evt.RequestContext.Identity.SourceIP
	}
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))

	body, err := decodeBody(evt.Body, evt.IsBase64Encoded)
	if err != nil {
		return Request{}, err
	}
	req.Body = body
	return req, nil
}

func decodeBody(raw json.RawMessage, isBase64 bool) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '"' {
		// Pre-parsed JSON value from a direct invocation.
		return trimmed, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("gateway: decode body: %w", err)
	}
	if !isBase64 {
		return []byte(s), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("gateway: decode base64 body: %w", err)
	}
	return decoded, nil
}

// ToAPIGatewayV2 converts a Response into the Lambda proxy response shape,
// which API Gateway v1, v2 and Function URLs all accept.
func (r Response) ToAPIGatewayV2() events.APIGatewayV2HTTPResponse {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: r.StatusCode,
		Headers:    headers,
		Body:       string(r.Body),
	}
}

// LambdaHandler adapts h for lambda.Start.
func LambdaHandler(h Handler) func(context.Context, json.RawMessage) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, raw json.RawMessage) (events.APIGatewayV2HTTPResponse, error) {
		req, err := DecodeLambdaEvent(raw)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: 400,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"success":false,"error":"Invalid request"}`,
			}, nil
		}
		return h.Serve(ctx, req).ToAPIGatewayV2(), nil
	}
}
