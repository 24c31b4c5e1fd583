package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/richcards/leadrelay/internal/config"
	"github.com/richcards/leadrelay/pkg/logging"
)

func TestSetupMetricsExposesPipelineMetrics(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveRequest("intake", http.StatusOK)
	m.ObserveStep("persist", "succeeded", 0.01)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"leadrelay_http_requests_total", "leadrelay_pipeline_steps_total", "leadrelay_pipeline_step_latency_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s to be exported", name)
		}
	}
}

func TestBuildHandlerServesContactForm(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &appconfig.Config{
		Env:                "development",
		AWSRegion:          "us-east-1",
		AWSAccessKeyID:     "test",
		AWSSecretAccessKey: "test",
		EmailProvider:      appconfig.EmailProviderStub,
		SubmissionsBackend: appconfig.BackendMemory,
		AdminEmail:         "admin@example.com",
		FromEmail:          "noreply@example.com",
		RateLimitRPS:       10,
		RateLimitBurst:     10,
	}

	handler, cleanup, err := buildHandler(ctx, cfg, logging.NewWithWriter("error", io.Discard))
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane Doe","email":"JANE@EXAMPLE.COM","phone":"+234 801 234 5678"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"metaCAPI":null`) {
		t.Fatalf("expected metaCAPI null without credentials, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"eventName":"Lead"}`)))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected relay to fail closed without credentials, got %d", rr.Code)
	}
}
