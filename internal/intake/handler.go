package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/richcards/leadrelay/internal/gateway"
	"github.com/richcards/leadrelay/internal/httpapi"
	"github.com/richcards/leadrelay/internal/observability/metrics"
	"github.com/richcards/leadrelay/internal/submissions"
	"github.com/richcards/leadrelay/pkg/logging"
)

const (
	handlerName    = "intake"
	msgSubmitted   = "Form submitted successfully"
	msgDatabaseErr = "database save failed"
)

// DatabaseStatus is the persistence outcome reported to the client.
type DatabaseStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// EmailStatus reports which emails were accepted by the provider.
type EmailStatus struct {
	Admin bool `json:"admin"`
	User  bool `json:"user"`
}

// ConversionStatus is present only when the lead event was accepted.
type ConversionStatus struct {
	Sent bool `json:"sent"`
}

// SubmitResponse is the success body of the intake endpoint.
type SubmitResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	SubmissionID string            `json:"submissionId"`
	Database     *DatabaseStatus   `json:"database"`
	EmailSent    EmailStatus       `json:"emailSent"`
	MetaCAPI     *ConversionStatus `json:"metaCAPI"`
}

// Handler exposes the intake pipeline over the gateway contract.
type Handler struct {
	service     *Service
	development bool
	metrics     *metrics.PipelineMetrics
	logger      *logging.Logger
}

// NewHandler creates the contact-form handler. development includes error
// details in failure bodies.
func NewHandler(service *Service, development bool, m *metrics.PipelineMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:     service,
		development: development,
		metrics:     m,
		logger:      logger,
	}
}

// Serve handles one contact-form request.
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
		h.logger.Error("intake handler misconfigured", "error", err)
		return httpapi.FromError(err, h.development)
	}

	var in FormInput
	if err := json.Unmarshal(req.Body, &in); err != nil {
		h.logger.Warn("invalid contact form body", "error", err)
		return httpapi.Error(http.StatusBadRequest, httpapi.MsgInvalidBody, "")
	}

	report, err := h.service.Process(ctx, in, submissions.Metadata{
		UserAgent: req.UserAgent(),
		SourceURL: req.SourceURL(),
		ClientIP:  req.SourceIP,
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return httpapi.Error(http.StatusBadRequest, verr.Message, "")
		}
		h.logger.Error("contact form processing failed", "error", err)
		return httpapi.FromError(err, h.development)
	}

	return httpapi.JSON(http.StatusOK, buildResponse(report))
}

func buildResponse(report *Report) SubmitResponse {
	resp := SubmitResponse{
		Success:      true,
		Message:      msgSubmitted,
		SubmissionID: report.Submission.ID,
		EmailSent: EmailStatus{
			Admin: report.AdminEmail.Outcome == Succeeded,
			User:  report.UserEmail.Outcome == Succeeded,
		},
	}
	switch report.Persist.Outcome {
	case Succeeded:
		resp.Database = &DatabaseStatus{Success: true}
	case Failed:
		resp.Database = &DatabaseStatus{Success: false, Error: msgDatabaseErr}
	}
	if report.Conversion.Outcome == Succeeded {
		resp.MetaCAPI = &ConversionStatus{Sent: true}
	}
	return resp
}
