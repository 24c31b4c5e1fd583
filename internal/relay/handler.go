package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/richcards/leadrelay/internal/capi"
	"github.com/richcards/leadrelay/internal/config"
	"github.com/richcards/leadrelay/internal/gateway"
	"github.com/richcards/leadrelay/internal/httpapi"
	"github.com/richcards/leadrelay/internal/observability/metrics"
	"github.com/richcards/leadrelay/pkg/logging"
)

const (
	handlerName   = "relay"
	msgSendFailed = "Failed to send event to Meta"
)

// ForwardResponse is the success body of the relay endpoint.
type ForwardResponse struct {
	Success        bool            `json:"success"`
	EventsReceived int             `json:"events_received"`
	Messages       json.RawMessage `json:"messages"`
}

// Handler exposes the relay over the gateway contract. Every failure is a
// 500; this endpoint is all-or-nothing.
type Handler struct {
	service     *Service
	development bool
	metrics     *metrics.PipelineMetrics
	logger      *logging.Logger
}

// NewHandler creates the relay handler.
func NewHandler(service *Service, development bool, m *metrics.PipelineMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, development: development, metrics: m, logger: logger}
}

// Serve handles one relay request.
func (h *Handler) Serve(ctx context.Context, req gateway.Request) gateway.Response {
	resp := h.serve(ctx, req)
	h.metrics.ObserveRequest(handlerName, resp.StatusCode)
	return resp
}

func (h *Handler) serve(ctx context.Context, req gateway.Request) gateway.Response {
	if req.IsPreflight() {
		return httpapi.Preflight()
	}

	if err := h.service.CheckConfig(); err != nil {
		return h.fail(err)
	}

	var in EventInput
	if err := json.Unmarshal(req.Body, &in); err != nil {
		return h.fail(err)
	}

	resp, err := h.service.Forward(ctx, in, capi.Origin{
		ClientIP:  req.SourceIP,
		UserAgent: req.UserAgent(),
		SourceURL: req.SourceURL(),
	})
	if err != nil {
		return h.fail(err)
	}

	messages := resp.Messages
	if len(messages) == 0 {
		messages = json.RawMessage("null")
	}
	return httpapi.JSON(http.StatusOK, ForwardResponse{
		Success:        true,
		EventsReceived: resp.EventsReceived,
		Messages:       messages,
	})
}

func (h *Handler) fail(err error) gateway.Response {
	h.logger.Error("event relay failed", "error", err)

	details := ""
	if h.development {
		details = err.Error()
	}
	return httpapi.Error(http.StatusInternalServerError, failureMessage(err), details)
}

func failureMessage(err error) string {
	var verr *ValidationError
	var missing *config.MissingError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &missing):
		return httpapi.MsgConfiguration
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return httpapi.MsgInvalidBody
	default:
		return msgSendFailed
	}
}
