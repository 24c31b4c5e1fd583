package relay

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Client-facing validation messages.
const (
	MsgMissingEventName  = "Missing required field: eventName"
	MsgInvalidExternalID = "Invalid userData.external_id"
)

// ValidationError is returned before any network call for input the caller
// must fix.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "relay: " + e.Message
}

// EventInput is the browser-observed event posted to the relay.
type EventInput struct {
	EventName  string          `json:"eventName"`
	EventID    string          `json:"eventId,omitempty"`
	EventTime  int64           `json:"eventTime,omitempty"`
	UserData   UserDataInput   `json:"userData"`
	CustomData json.RawMessage `json:"customData,omitempty"`
}

// UserDataInput carries raw identifiers. Em, Ph and ExternalID are hashed
// before they leave the process.
type UserDataInput struct {
	Em              string     `json:"em,omitempty"`
	Ph              string     `json:"ph,omitempty"`
	ExternalID      Identifier `json:"external_id,omitempty"`
	Fbp             string     `json:"fbp,omitempty"`
	Fbc             string     `json:"fbc,omitempty"`
	ClientIPAddress string     `json:"client_ip_address,omitempty"`
	ClientUserAgent string     `json:"client_user_agent,omitempty"`
	SourceURL       string     `json:"source_url,omitempty"`
}

// Identifier accepts a JSON string, number or boolean and keeps its text.
type Identifier string

func (id *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.(type) {
	case float64, bool:
		*id = Identifier(strings.TrimSpace(string(data)))
		return nil
	default:
		return &ValidationError{Message: MsgInvalidExternalID}
	}
}

// Validate requires an event name.
func (in EventInput) Validate() error {
	if strings.TrimSpace(in.EventName) == "" {
		return &ValidationError{Message: MsgMissingEventName}
	}
	return nil
}

var emptyObject = json.RawMessage(`{}`)

func customDataOrEmpty(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return emptyObject
	}
	return trimmed
}
