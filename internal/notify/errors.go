package notify

import (
	"errors"
	"fmt"
)

// ProviderErrorKind classifies email provider failures.
type ProviderErrorKind int

const (
	KindOther ProviderErrorKind = iota
	// KindUnverified means the sender or recipient identity is not verified
	// with the provider (SES sandbox, SendGrid sender identity).
	KindUnverified
	// KindRejected means the provider refused the message itself.
	KindRejected
)

func (k ProviderErrorKind) String() string {
	switch k {
	case KindUnverified:
		return "unverified"
	case KindRejected:
		return "rejected"
	default:
		return "other"
	}
}

// ProviderError is returned by every EmailSender when the provider call fails.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("notify: %s send failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// KindOf returns the provider error kind carried by err, or KindOther.
func KindOf(err error) ProviderErrorKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindOther
}
