package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;", EscapeHTML("<script>"))
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#039;", EscapeHTML(`&<>"'`))
	assert.Equal(t, "plain text", EscapeHTML("plain text"))

	escaped := EscapeHTML(`<script>alert("x")</script>`)
	assert.NotContains(t, escaped, "<")
	assert.NotContains(t, escaped, ">")
}

func TestEscapeHTML_NotIdempotent(t *testing.T) {
	assert.Equal(t, "&amp;lt;b&amp;gt;", EscapeHTML(EscapeHTML("<b>")))
}

func TestAdminNotification_EscapesSubmitterValues(t *testing.T) {
	msg := AdminNotification("admin@rich.example", AdminNotificationData{
		Name:        `<img src=x onerror="alert(1)">`,
		Email:       "jane@example.com",
		Phone:       "+234 801 234 5678",
		SubmittedAt: time.Date(2026, 3, 4, 15, 4, 0, 0, time.UTC),
	})

	assert.Equal(t, "admin@rich.example", msg.To)
	assert.True(t, strings.HasPrefix(msg.Subject, "New Contact Form Submission - "))
	assert.NotContains(t, msg.HTML, "<img")
	assert.Contains(t, msg.HTML, "&lt;img src=x onerror=&quot;alert(1)&quot;&gt;")
	assert.Contains(t, msg.HTML, "+234 801 234 5678")
	assert.Contains(t, msg.HTML, "March 4, 2026 at 3:04 PM UTC")
	assert.Contains(t, msg.HTML, "width: 100%;")
	assert.Contains(t, msg.Body, "Phone: +234 801 234 5678")
}

func TestUserConfirmation_EscapesTextButNotURLs(t *testing.T) {
	links := ContactLinks{
		WhatsAppNumber: "+86 <193>",
		WhatsAppURL:    "https://api.whatsapp.com/send?phone=86&text=Hi%2C%20I%27m",
		TikTokUsername: "@rich's",
		TikTokURL:      "https://www.tiktok.com/@veryrich429",
	}
	msg := UserConfirmation("jane@example.com", "Jane & Co", links)

	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Thank You for Contacting Rich - Gift Card Trading", msg.Subject)
	assert.Contains(t, msg.HTML, "Thank You, Jane &amp; Co!")
	assert.Contains(t, msg.HTML, `href="https://api.whatsapp.com/send?phone=86&text=Hi%2C%20I%27m"`)
	assert.Contains(t, msg.HTML, "+86 &lt;193&gt;")
	assert.Contains(t, msg.HTML, "@rich&#039;s")
	assert.Contains(t, msg.HTML, `href="https://www.tiktok.com/@veryrich429"`)
}
