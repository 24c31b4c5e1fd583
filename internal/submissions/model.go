package submissions

import (
	"strings"
	"time"
)

// Status is the follow-up state of a submission. Only StatusNew is ever
// written here; the other states belong to whoever works the leads.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusArchived  Status = "archived"
)

// SourceContactForm tags submissions coming from the website contact form.
const SourceContactForm = "contact_form"

// Retention is how long the storage backend should keep a submission.
const Retention = 90 * 24 * time.Hour

// Submission is a validated contact-form entry. It is never mutated after New.
type Submission struct {
	ID          string    `dynamodbav:"id" json:"id"`
	Name        string    `dynamodbav:"name" json:"name"`
	Email       string    `dynamodbav:"email" json:"email"`
	Phone       string    `dynamodbav:"phone" json:"phone"`
	SubmittedAt time.Time `dynamodbav:"timestamp" json:"timestamp"`
	Status      Status    `dynamodbav:"status" json:"status"`
	Source      string    `dynamodbav:"source" json:"source"`
	UserAgent   string    `dynamodbav:"userAgent" json:"userAgent"`
	SourceURL   string    `dynamodbav:"sourceUrl" json:"sourceUrl"`
	ClientIP    string    `dynamodbav:"clientIp" json:"clientIp"`
	CreatedAt   time.Time `dynamodbav:"createdAt" json:"createdAt"`
	ExpiresAt   int64     `dynamodbav:"ttl" json:"ttl"`
}

// Metadata is best-effort request information; empty strings when unknown.
type Metadata struct {
	UserAgent string
	SourceURL string
	ClientIP  string
}

// New builds a submission from already-validated form values.
func New(id, name, email, phone string, meta Metadata, now time.Time) *Submission {
	now = now.UTC()
	return &Submission{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Email:       NormalizeEmail(email),
		Phone:       strings.TrimSpace(phone),
		SubmittedAt: now,
		Status:      StatusNew,
		Source:      SourceContactForm,
		UserAgent:   meta.UserAgent,
		SourceURL:   meta.SourceURL,
		ClientIP:    meta.ClientIP,
		CreatedAt:   now,
		ExpiresAt:   now.Add(Retention).Unix(),
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
