package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/richcards/leadrelay/pkg/logging"
)

type sesAPI interface {
	SendEmail(context.Context, *sesv2.SendEmailInput, ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES.
type SESSender struct {
	client    sesAPI
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// NewSESSender creates a new AWS SES email sender. FromEmail must be a
// verified identity in the sending region.
func NewSESSender(client sesAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SESSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends an email via AWS SES.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) (SendResult, error) {
	if s == nil || s.client == nil {
		return SendResult{}, fmt.Errorf("notify: SES client not configured")
	}

	ctx, span := emailTracer.Start(ctx, "notify.ses.send")
	defer span.End()
	span.SetAttributes(attribute.String("email.subject", msg.Subject))

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{},
			},
		},
	}

	if msg.Body != "" {
		input.Content.Simple.Body.Text = &types.Content{
			Data:    aws.String(msg.Body),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.HTML != "" {
		input.Content.Simple.Body.Html = &types.Content{
			Data:    aws.String(msg.HTML),
			Charset: aws.String("UTF-8"),
		}
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		kind := sesKind(err)
		s.logger.Error("SES send failed", "error", err, "kind", kind.String())
		return SendResult{}, &ProviderError{Provider: "ses", Kind: kind, Err: err}
	}

	result := SendResult{MessageID: aws.ToString(output.MessageId)}
	span.SetAttributes(attribute.String("email.message_id", result.MessageID))
	s.logger.Info("email sent via SES", "subject", msg.Subject, "message_id", result.MessageID)
	return result, nil
}

// sesKind classifies an SES API error. SES reports unverified identities as a
// MessageRejected whose message says the address is not verified.
func sesKind(err error) ProviderErrorKind {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return KindOther
	}
	switch apiErr.ErrorCode() {
	case "MailFromDomainNotVerifiedException":
		return KindUnverified
	case "MessageRejected":
		if strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "not verified") {
			return KindUnverified
		}
		return KindRejected
	default:
		return KindOther
	}
}

var _ EmailSender = (*SESSender)(nil)
