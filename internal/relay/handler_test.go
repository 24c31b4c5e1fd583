package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richcards/leadrelay/internal/capi"
	"github.com/richcards/leadrelay/internal/gateway"
	"github.com/richcards/leadrelay/internal/httpapi"
	"github.com/richcards/leadrelay/internal/pii"
)

type graphStub struct {
	mu       sync.Mutex
	paths    []string
	payloads []map[string]any
	status   int
	body     string
}

func (g *graphStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)

	g.mu.Lock()
	g.paths = append(g.paths, r.URL.Path)
	g.payloads = append(g.payloads, payload)
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(g.status)
	_, _ = io.WriteString(w, g.body)
}

func newStubbedHandler(t *testing.T, stub *graphStub, cfg capi.Config) *Handler {
	t.Helper()
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	client := capi.NewClient(cfg, nil)
	return NewHandler(newTestService(client), false, nil, nil)
}

func relayRequest(body string) gateway.Request {
	return gateway.Request{
		Method:   http.MethodPost,
		Headers:  map[string]string{"user-agent": "Mozilla/5.0", "content-type": "application/json"},
		Body:     []byte(body),
		SourceIP: "203.0.113.9",
	}
}

func TestHandlerForwardsEvent(t *testing.T) {
	stub := &graphStub{status: http.StatusOK, body: `{"events_received":1,"messages":[],"fbtrace_id":"AbC"}`}
	handler := newStubbedHandler(t, stub, capi.Config{PixelID: "123", AccessToken: "tok", TestEventCode: "TEST1"})

	resp := handler.Serve(context.Background(), relayRequest(`{"eventName":"Contact","userData":{"em":"Foo@Bar.com"},"customData":{"content_name":"WhatsApp Contact"}}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"events_received":1,"messages":[]}`, string(resp.Body))

	require.Len(t, stub.payloads, 1)
	assert.Equal(t, "/v21.0/123/events", stub.paths[0])
	payload := stub.payloads[0]
	assert.Equal(t, "tok", payload["access_token"])
	assert.Equal(t, "TEST1", payload["test_event_code"])

	data := payload["data"].([]any)
	require.Len(t, data, 1)
	evt := data[0].(map[string]any)
	assert.Equal(t, "Contact", evt["event_name"])
	assert.Equal(t, "website", evt["action_source"])
	userData := evt["user_data"].(map[string]any)
	assert.Equal(t, pii.HashEmail("foo@bar.com"), userData["em"])
	assert.NotContains(t, userData, "ph")
	assert.Equal(t, "203.0.113.9", userData["client_ip_address"])
	assert.Equal(t, "Mozilla/5.0", userData["client_user_agent"])
	assert.Equal(t, map[string]any{"content_name": "WhatsApp Contact"}, evt["custom_data"])
}

func TestHandlerMessagesDefaultToNull(t *testing.T) {
	stub := &graphStub{status: http.StatusOK, body: `{"events_received":1}`}
	handler := newStubbedHandler(t, stub, capi.Config{PixelID: "123", AccessToken: "tok"})

	resp := handler.Serve(context.Background(), relayRequest(`{"eventName":"Contact"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"events_received":1,"messages":null}`, string(resp.Body))
	assert.NotContains(t, stub.payloads[0], "test_event_code")
}

func TestHandlerPreflight(t *testing.T) {
	stub := &graphStub{status: http.StatusOK, body: `{}`}
	handler := newStubbedHandler(t, stub, capi.Config{})

	resp := handler.Serve(context.Background(), gateway.Request{Method: "options"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"CORS preflight"}`, string(resp.Body))
	assert.Empty(t, stub.payloads)
}

func TestHandlerFailures(t *testing.T) {
	tests := []struct {
		name      string
		cfg       capi.Config
		status    int
		upstream  string
		body      string
		wantError string
		wantCalls int
	}{
		{
			name:      "missing credentials",
			cfg:       capi.Config{PixelID: "123"},
			body:      `{"eventName":"Contact"}`,
			wantError: httpapi.MsgConfiguration,
		},
		{
			name:      "missing event name",
			cfg:       capi.Config{PixelID: "123", AccessToken: "tok"},
			body:      `{"userData":{}}`,
			wantError: MsgMissingEventName,
		},
		{
			name:      "malformed json",
			cfg:       capi.Config{PixelID: "123", AccessToken: "tok"},
			body:      `{"eventName":`,
			wantError: httpapi.MsgInvalidBody,
		},
		{
			name:      "bad external id",
			cfg:       capi.Config{PixelID: "123", AccessToken: "tok"},
			body:      `{"eventName":"Contact","userData":{"external_id":{"x":1}}}`,
			wantError: MsgInvalidExternalID,
		},
		{
			name:      "upstream rejects",
			cfg:       capi.Config{PixelID: "123", AccessToken: "tok"},
			status:    http.StatusBadRequest,
			upstream:  `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190,"fbtrace_id":"X"}}`,
			body:      `{"eventName":"Contact"}`,
			wantError: "Failed to send event to Meta",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &graphStub{status: tt.status, body: tt.upstream}
			if stub.status == 0 {
				stub.status = http.StatusOK
			}
			handler := newStubbedHandler(t, stub, tt.cfg)

			resp := handler.Serve(context.Background(), relayRequest(tt.body))
			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.Unmarshal(resp.Body, &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotContains(t, string(resp.Body), "OAuth")
			assert.Len(t, stub.payloads, tt.wantCalls)
		})
	}
}

func TestHandlerScenarioBareLeadEvent(t *testing.T) {
	stub := &graphStub{status: http.StatusOK, body: `{"events_received":1}`}
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)
	client := capi.NewClient(capi.Config{PixelID: "123", AccessToken: "tok", BaseURL: server.URL}, nil)
	handler := NewHandler(NewService(client, nil, nil, nil, nil), false, nil, nil)

	for i := 0; i < 2; i++ {
		resp := handler.Serve(context.Background(), gateway.Request{Method: http.MethodPost, Body: []byte(`{"eventName":"Lead"}`)})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	require.Len(t, stub.payloads, 2)
	var eventIDs []string
	for _, payload := range stub.payloads {
		evt := payload["data"].([]any)[0].(map[string]any)
		userData := evt["user_data"].(map[string]any)
		assert.NotContains(t, userData, "em")
		assert.NotContains(t, userData, "ph")
		assert.NotContains(t, userData, "external_id")
		assert.Equal(t, "", userData["client_ip_address"])
		assert.Equal(t, "", userData["client_user_agent"])
		assert.Equal(t, map[string]any{}, evt["custom_data"])
		eventIDs = append(eventIDs, evt["event_id"].(string))
	}
	assert.NotEmpty(t, eventIDs[0])
	assert.NotEqual(t, eventIDs[0], eventIDs[1])
}
