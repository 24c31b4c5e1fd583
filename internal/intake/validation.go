package intake

import (
	"regexp"
	"strings"
)

// Client-facing validation messages.
const (
	MsgMissingFields = "Missing required fields: name, email, phone"
	MsgInvalidEmail  = "Invalid email format"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError is returned for input the caller must fix. No side effect
// has run when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "intake: " + e.Message
}

// FormInput is the contact-form body.
type FormInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate requires all three fields after trimming and a local@domain.tld
// shaped email.
func (in FormInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)

	if name == "" || email == "" || phone == "" {
		return &ValidationError{Message: MsgMissingFields}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	return nil
}
