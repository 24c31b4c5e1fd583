// Package httpapi formats the JSON responses shared by both handlers and
// classifies errors into status codes and client-safe messages.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/richcards/leadrelay/internal/config"
	"github.com/richcards/leadrelay/internal/gateway"
	"github.com/richcards/leadrelay/internal/notify"
)

// Client-facing messages. Error detail stays in server logs.
const (
	MsgConfiguration   = "Server configuration error"
	MsgEmailUnverified = "Email service configuration error. Please contact the administrator."
	MsgEmailRejected   = "Email could not be sent. Please check email configuration."
	MsgInternal        = "Failed to process request"
	MsgInvalidBody     = "Invalid request body"
	MsgCORSPreflight   = "CORS preflight"
)

// ErrorBody is the uniform failure payload.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// JSON encodes v with the given status.
func JSON(status int, v any) gateway.Response {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"error":"` + MsgInternal + `"}`)
	}
	headers := make(map[string]string, len(jsonHeaders))
	for k, val := range jsonHeaders {
		headers[k] = val
	}
	return gateway.Response{StatusCode: status, Headers: headers, Body: body}
}

// Preflight answers a CORS preflight without touching any collaborator.
func Preflight() gateway.Response {
	return JSON(http.StatusOK, map[string]string{"message": MsgCORSPreflight})
}

// Error builds a failure response. details is omitted when empty.
func Error(status int, message, details string) gateway.Response {
	return JSON(status, ErrorBody{Success: false, Error: message, Details: details})
}

// Classify maps an error escaping a handler onto a status and client message.
// It inspects error types only; message text is never matched here.
func Classify(err error) (int, string) {
	var missing *config.MissingError
	if errors.As(err, &missing) {
		return http.StatusInternalServerError, MsgConfiguration
	}

	var provider *notify.ProviderError
	if errors.As(err, &provider) {
		switch provider.Kind {
		case notify.KindUnverified:
			return http.StatusBadRequest, MsgEmailUnverified
		case notify.KindRejected:
			return http.StatusBadRequest, MsgEmailRejected
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return http.StatusBadRequest, MsgInvalidBody
	}

	return http.StatusInternalServerError, MsgInternal
}

// FromError classifies err and attaches err.Error() as details when
// development is true.
func FromError(err error, development bool) gateway.Response {
	status, message := Classify(err)
	details := ""
	if development && err != nil {
		details = err.Error()
	}
	return Error(status, message, details)
}
