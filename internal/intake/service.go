package intake

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/richcards/leadrelay/internal/capi"
	"github.com/richcards/leadrelay/internal/config"
	"github.com/richcards/leadrelay/internal/ids"
	"github.com/richcards/leadrelay/internal/notify"
	"github.com/richcards/leadrelay/internal/observability/metrics"
	"github.com/richcards/leadrelay/internal/submissions"
	"github.com/richcards/leadrelay/pkg/logging"
)

// Pipeline step names, also used as metric labels.
const (
	StepPersist    = "persist"
	StepAdminEmail = "admin_email"
	StepUserEmail  = "user_email"
	StepConversion = "conversion"
)

// Outcome is the result of one side effect.
type Outcome int

const (
	Skipped Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// StepResult records what happened to one side effect.
type StepResult struct {
	Outcome   Outcome
	Err       error
	MessageID string
}

// Report collects the per-step results of one submission.
type Report struct {
	Submission *submissions.Submission
	Persist    StepResult
	AdminEmail StepResult
	UserEmail  StepResult
	Conversion StepResult
}

// Forwarder sends conversion events to the ad platform.
type Forwarder interface {
	Send(ctx context.Context, events ...capi.Event) (*capi.Response, error)
}

// Options are the per-deployment settings of the intake pipeline.
type Options struct {
	AdminEmail string
	FromEmail  string
	Links      notify.ContactLinks
	// AbortOnAdminEmailFailure turns an admin-email failure into a request
	// failure instead of a recorded step failure.
	AbortOnAdminEmailFailure bool
}

// ServiceConfig wires the collaborators. Store and Forwarder may be nil, in
// which case their steps are skipped.
type ServiceConfig struct {
	Store     submissions.Store
	Email     notify.EmailSender
	Forwarder Forwarder
	IDs       ids.Generator
	Now       func() time.Time
	Options   Options
	Metrics   *metrics.PipelineMetrics
	Logger    *logging.Logger
}

// Service runs the intake pipeline: validate, persist, admin email, user
// email, conversion event. Steps run sequentially and none is retried.
type Service struct {
	store     submissions.Store
	email     notify.EmailSender
	forwarder Forwarder
	ids       ids.Generator
	now       func() time.Time
	opts      Options
	metrics   *metrics.PipelineMetrics
	logger    *logging.Logger
	tracer    trace.Tracer
}

// NewService builds the pipeline.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Email == nil {
		panic("intake: email sender required")
	}
	if cfg.IDs == nil {
		cfg.IDs = ids.UUIDv7{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if c, ok := cfg.Forwarder.(interface{ Configured() bool }); ok && !c.Configured() {
		cfg.Forwarder = nil
	}
	return &Service{
		store:     cfg.Store,
		email:     cfg.Email,
		forwarder: cfg.Forwarder,
		ids:       cfg.IDs,
		now:       cfg.Now,
		opts:      cfg.Options,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		tracer:    otel.Tracer("leadrelay.internal.intake"),
	}
}

// CheckConfig reports missing settings the pipeline cannot run without.
func (s *Service) CheckConfig() error {
	var missing []string
	if s.opts.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if s.opts.FromEmail == "" {
		missing = append(missing, "FROM_EMAIL")
	}
	if len(missing) > 0 {
		return &config.MissingError{Keys: missing}
	}
	return nil
}

// Process validates the form and runs every side effect in order. Failures
// of individual side effects are recorded in the report, not returned, unless
// AbortOnAdminEmailFailure is set and the admin email fails.
func (s *Service) Process(ctx context.Context, in FormInput, meta submissions.Metadata) (*Report, error) {
	if err := s.CheckConfig(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	sub := submissions.New(s.ids.NewID(), in.Name, in.Email, in.Phone, meta, now)
	report := &Report{Submission: sub}

	ctx, span := s.tracer.Start(ctx, "intake.process")
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", sub.ID))

	logger := s.logger.With("submission_id", sub.ID)

	report.Persist = s.persist(ctx, sub, logger)

	report.AdminEmail = s.send(ctx, StepAdminEmail, notify.AdminNotification(s.opts.AdminEmail, notify.AdminNotificationData{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		SubmittedAt: sub.SubmittedAt,
	}), logger)
	if report.AdminEmail.Outcome == Failed && s.opts.AbortOnAdminEmailFailure {
		return report, fmt.Errorf("intake: admin email: %w", report.AdminEmail.Err)
	}

	report.UserEmail = s.send(ctx, StepUserEmail, notify.UserConfirmation(sub.Email, sub.Name, s.opts.Links), logger)

	report.Conversion = s.forward(ctx, sub, logger)

	span.SetAttributes(
		attribute.String("intake.persist", report.Persist.Outcome.String()),
		attribute.String("intake.admin_email", report.AdminEmail.Outcome.String()),
		attribute.String("intake.user_email", report.UserEmail.Outcome.String()),
		attribute.String("intake.conversion", report.Conversion.Outcome.String()),
	)
	logger.Info("form submission processed",
		"persist", report.Persist.Outcome.String(),
		"admin_email", report.AdminEmail.Outcome.String(),
		"user_email", report.UserEmail.Outcome.String(),
		"conversion", report.Conversion.Outcome.String(),
	)
	return report, nil
}

func (s *Service) persist(ctx context.Context, sub *submissions.Submission, logger *logging.Logger) StepResult {
	if s.store == nil {
		logger.Warn("submission store not configured, skipping database save")
		s.metrics.ObserveStep(StepPersist, Skipped.String(), 0)
		return StepResult{Outcome: Skipped}
	}

	start := time.Now()
	err := s.store.Save(ctx, sub)
	result := StepResult{Outcome: Succeeded}
	if err != nil {
		logger.Error("database save failed", "error", err)
		result = StepResult{Outcome: Failed, Err: err}
	}
	s.metrics.ObserveStep(StepPersist, result.Outcome.String(), time.Since(start).Seconds())
	return result
}

func (s *Service) send(ctx context.Context, step string, msg notify.EmailMessage, logger *logging.Logger) StepResult {
	start := time.Now()
	res, err := s.email.Send(ctx, msg)
	result := StepResult{Outcome: Succeeded, MessageID: res.MessageID}
	if err != nil {
		logger.Error("email send failed", "step", step, "error", err)
		result = StepResult{Outcome: Failed, Err: err}
	} else {
		logger.Info("email sent", "step", step, "message_id", res.MessageID)
	}
	s.metrics.ObserveStep(step, result.Outcome.String(), time.Since(start).Seconds())
	return result
}

func (s *Service) forward(ctx context.Context, sub *submissions.Submission, logger *logging.Logger) StepResult {
	if s.forwarder == nil {
		s.metrics.ObserveStep(StepConversion, Skipped.String(), 0)
		return StepResult{Outcome: Skipped}
	}

	evt := capi.NewLeadEvent(s.ids.NewID(), s.now(), sub.Email, sub.Phone, capi.Origin{
		ClientIP:  sub.ClientIP,
		UserAgent: sub.UserAgent,
		SourceURL: sub.SourceURL,
	})

	start := time.Now()
	_, err := s.forwarder.Send(ctx, evt)
	result := StepResult{Outcome: Succeeded}
	if err != nil {
		logger.Error("meta conversions API lead event failed", "event_id", evt.EventID, "error", err)
		result = StepResult{Outcome: Failed, Err: err}
	}
	s.metrics.ObserveStep(StepConversion, result.Outcome.String(), time.Since(start).Seconds())
	return result
}
