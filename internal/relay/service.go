package relay

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
	"github.com/richcards/leadrelay/internal/observability/metrics"
	"github.com/richcards/leadrelay/internal/pii"
	"github.com/richcards/leadrelay/pkg/logging"
)

const stepForward = "relay_forward"

// Sender posts events to the Conversions API.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, events ...capi.Event) (*capi.Response, error)
}

// UpstreamError wraps any failure of the outbound call.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("relay: forward event: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Service hashes and forwards one event per call.
type Service struct {
	sender  Sender
	ids     ids.Generator
	now     func() time.Time
	metrics *metrics.PipelineMetrics
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewService creates the relay service. idGen and now default to UUIDv7 and
// time.Now.
func NewService(sender Sender, idGen ids.Generator, now func() time.Time, m *metrics.PipelineMetrics, logger *logging.Logger) *Service {
	if idGen == nil {
		idGen = ids.UUIDv7{}
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sender:  sender,
		ids:     idGen,
		now:     now,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("leadrelay.internal.relay"),
	}
}

// CheckConfig fails when no credentials are available for the outbound call.
func (s *Service) CheckConfig() error {
	if s.sender == nil || !s.sender.Configured() {
		return &config.MissingError{Keys: []string{"META_PIXEL_ID", "META_ACCESS_TOKEN"}}
	}
	return nil
}

// Forward validates the input, builds a single event and sends it.
func (s *Service) Forward(ctx context.Context, in EventInput, origin capi.Origin) (*capi.Response, error) {
	if err := s.CheckConfig(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	evt := s.BuildEvent(in, origin)

	ctx, span := s.tracer.Start(ctx, "relay.forward")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.name", evt.EventName),
		attribute.String("event.id", evt.EventID),
	)

	start := time.Now()
	resp, err := s.sender.Send(ctx, evt)
	if err != nil {
		s.metrics.ObserveStep(stepForward, "failed", time.Since(start).Seconds())
		span.RecordError(err)
		return nil, &UpstreamError{Err: err}
	}
	s.metrics.ObserveStep(stepForward, "succeeded", time.Since(start).Seconds())

	s.logger.Info("event forwarded",
		"event_name", evt.EventName,
		"event_id", evt.EventID,
		"events_received", resp.EventsReceived,
	)
	return resp, nil
}

// BuildEvent applies defaults and hashing. Values in the body win over the
// request metadata in origin.
func (s *Service) BuildEvent(in EventInput, origin capi.Origin) capi.Event {
	eventTime := in.EventTime
	if eventTime == 0 {
		eventTime = s.now().Unix()
	}
	eventID := in.EventID
	if eventID == "" {
		eventID = s.ids.NewID()
	}

	ud := in.UserData
	return capi.Event{
		EventName:      in.EventName,
		EventTime:      eventTime,
		EventID:        eventID,
		EventSourceURL: firstNonEmpty(ud.SourceURL, origin.SourceURL),
		ActionSource:   capi.ActionSourceWebsite,
		UserData: capi.UserData{
			ClientIPAddress: firstNonEmpty(ud.ClientIPAddress, origin.ClientIP),
			ClientUserAgent: firstNonEmpty(ud.ClientUserAgent, origin.UserAgent),
			FBP:             ud.Fbp,
			FBC:             ud.Fbc,
			Em:              pii.HashEmail(ud.Em),
			Ph:              pii.HashPhone(ud.Ph),
			ExternalID:      pii.HashValue(string(ud.ExternalID)),
		},
		CustomData: customDataOrEmpty(in.CustomData),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
