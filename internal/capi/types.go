package capi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/richcards/leadrelay/internal/pii"
)

// ActionSourceWebsite marks events that happened on the website.
const ActionSourceWebsite = "website"

// UserData identifies the person behind an event. Em, Ph and ExternalID are
// SHA-256 digests and are omitted when the source value was empty.
type UserData struct {
	ClientIPAddress string `json:"client_ip_address"`
	ClientUserAgent string `json:"client_user_agent"`
	FBP             string `json:"fbp"`
	FBC             string `json:"fbc"`
	Em              string `json:"em,omitempty"`
	Ph              string `json:"ph,omitempty"`
	ExternalID      string `json:"external_id,omitempty"`
}

// Event is one server-side conversion event.
type Event struct {
	EventName      string          `json:"event_name"`
	EventTime      int64           `json:"event_time"`
	EventID        string          `json:"event_id"`
	EventSourceURL string          `json:"event_source_url"`
	ActionSource   string          `json:"action_source"`
	UserData       UserData        `json:"user_data"`
	CustomData     json.RawMessage `json:"custom_data"`
}

type batch struct {
	Data          []Event `json:"data"`
	AccessToken   string  `json:"access_token"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

// Response is the platform's acknowledgement of a batch.
type Response struct {
	EventsReceived int             `json:"events_received"`
	Messages       json.RawMessage `json:"messages,omitempty"`
	FBTraceID      string          `json:"fbtrace_id,omitempty"`
}

type errorEnvelope struct {
	Error *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// APIError is returned when the platform answers with a non-2xx status or an
// error envelope. Body holds the raw payload for server-side logs only.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       int
	FBTraceID  string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("capi: API error %d (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("capi: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Origin is the request metadata attached to an event.
type Origin struct {
	ClientIP  string
	UserAgent string
	SourceURL string
}

var leadCustomData = json.RawMessage(`{"content_name":"Contact Form Submission","content_category":"Lead Generation","currency":"USD","value":0}`)

// NewLeadEvent builds the Lead event sent after a contact-form submission.
// email is expected to be normalized already; phone may carry formatting.
func NewLeadEvent(eventID string, now time.Time, email, phone string, origin Origin) Event {
	return Event{
		EventName:      "Lead",
		EventTime:      now.Unix(),
		EventID:        eventID,
		EventSourceURL: origin.SourceURL,
		ActionSource:   ActionSourceWebsite,
		UserData: UserData{
			ClientIPAddress: origin.ClientIP,
			ClientUserAgent: origin.UserAgent,
			Em:              pii.HashEmail(email),
			Ph:              pii.HashPhone(phone),
			ExternalID:      pii.HashValue(email),
		},
		CustomData: leadCustomData,
	}
}
