package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/richcards/leadrelay/pkg/logging"
)

var emailTracer = otel.Tracer("leadrelay.internal.notify")

const defaultFromName = "Rich"

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SES, SendGrid, stub) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (SendResult, error)
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// SendResult carries the provider's identifier for an accepted message.
type SendResult struct {
	MessageID string
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a new SendGrid email sender.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (SendResult, error) {
	if s.client == nil {
		return SendResult{}, fmt.Errorf("notify: sendgrid client not configured")
	}

	ctx, span := emailTracer.Start(ctx, "notify.sendgrid.send")
	defer span.End()
	span.SetAttributes(attribute.String("email.subject", msg.Subject))

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	plain := msg.Body
	if plain == "" {
		plain = msg.HTML
	}
	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, plain, html)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		s.logger.Error("sendgrid send failed", "error", err)
		return SendResult{}, &ProviderError{Provider: "sendgrid", Kind: KindOther, Err: err}
	}

	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
		span.SetStatus(codes.Error, "error status")
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
		return SendResult{}, &ProviderError{Provider: "sendgrid", Kind: sendGridKind(response.StatusCode), Err: err}
	}

	result := SendResult{}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		result.MessageID = ids[0]
	}
	s.logger.Info("email sent via sendgrid", "subject", msg.Subject, "status", response.StatusCode, "message_id", result.MessageID)
	return result, nil
}

// sendGridKind maps SendGrid statuses onto provider error kinds. SendGrid
// answers 403 when the from address is not a verified sender identity.
func sendGridKind(status int) ProviderErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnverified
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return KindRejected
	default:
		return KindOther
	}
}

// StubEmailSender is a no-op sender for local development or when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) (SendResult, error) {
	s.logger.Info("stub email sender: would send email", "subject", msg.Subject)
	return SendResult{MessageID: "stub"}, nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
