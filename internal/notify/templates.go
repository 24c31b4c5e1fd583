package notify

import (
	"fmt"
	"strings"
	"time"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML-special characters. Escaping an already
// escaped string escapes it again.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// AdminNotificationData is interpolated into the admin notification email.
type AdminNotificationData struct {
	Name        string
	Email       string
	Phone       string
	SubmittedAt time.Time
}

// ContactLinks are rendered into the confirmation email. URLs go into href
// attributes verbatim; the display text is escaped.
type ContactLinks struct {
	WhatsAppNumber string
	WhatsAppURL    string
	TikTokUsername string
	TikTokURL      string
}

const submittedAtLayout = "January 2, 2006 at 3:04 PM MST"

// AdminNotification renders the "new lead" email sent to the site owner.
func AdminNotification(to string, data AdminNotificationData) EmailMessage {
	submitted := data.SubmittedAt.UTC().Format(submittedAtLayout)

	subject := fmt.Sprintf("New Contact Form Submission - %s", data.Name)
	text := fmt.Sprintf(`You have received a new contact form submission:

Name: %s
Email: %s
Phone: %s
Submitted: %s

Please follow up with this lead as soon as possible.`, data.Name, data.Email, data.Phone, submitted)

	html := fmt.Sprintf(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6;">
    <h2 style="color: #4F46E5;">New Contact Form Submission</h2>
    <p>You have received a new contact form submission:</p>
    <table style="border-collapse: collapse; width: 100%%; max-width: 600px;">
      %s
      %s
      %s
      %s
    </table>
    <p style="margin-top: 20px; color: #666;">Please follow up with this lead as soon as possible.</p>
  </body>
</html>`,
		adminRow("Name", data.Name),
		adminRow("Email", data.Email),
		adminRow("Phone", data.Phone),
		adminRow("Submitted", submitted),
	)

	return EmailMessage{
		To:      to,
		Subject: subject,
		Body:    text,
		HTML:    html,
	}
}

func adminRow(label, value string) string {
	return fmt.Sprintf(`<tr>
        <td style="padding: 8px; border: 1px solid #ddd; background-color: #f9f9f9; font-weight: bold;">%s:</td>
        <td style="padding: 8px; border: 1px solid #ddd;">%s</td>
      </tr>`, label, EscapeHTML(value))
}

// UserConfirmation renders the thank-you email sent to the submitter.
func UserConfirmation(to, name string, links ContactLinks) EmailMessage {
	subject := "Thank You for Contacting Rich - Gift Card Trading"

	text := fmt.Sprintf(`Thank You, %s!

We have received your contact form submission and our team will get back to you shortly.

WhatsApp: %s (%s)
TikTok: %s (%s)

Best regards,
The Rich Team

This is an automated email. Please do not reply to this message.`,
		name, links.WhatsAppNumber, links.WhatsAppURL, links.TikTokUsername, links.TikTokURL)

	html := fmt.Sprintf(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h2 style="color: #4F46E5;">Thank You, %s!</h2>
      <p>We have received your contact form submission and our team will get back to you shortly.</p>
      <p>In the meantime, feel free to:</p>
      <ul>
        <li>Visit our website to learn more about our services</li>
        <li>Contact us directly via WhatsApp for immediate assistance</li>
        <li>Check out our rates and trading options</li>
      </ul>
      <div style="margin-top: 30px; padding: 20px; background-color: #f8f9fa; border-radius: 8px;">
        <h3 style="color: #4F46E5; margin-top: 0;">Connect With Us</h3>
        <p style="margin: 10px 0;">
          <strong>WhatsApp:</strong><br>
          <a href="%s" style="color: #4F46E5; text-decoration: none;">%s</a>
        </p>
        <p style="margin: 10px 0;">
          <strong>TikTok:</strong><br>
          <a href="%s" style="color: #4F46E5; text-decoration: none;">%s</a>
        </p>
      </div>
      <p style="margin-top: 30px;">Best regards,<br>The Rich Team</p>
      <hr style="margin: 30px 0; border: none; border-top: 1px solid #ddd;">
      <p style="color: #666; font-size: 12px;">This is an automated email. Please do not reply to this message.</p>
    </div>
  </body>
</html>`,
		EscapeHTML(name),
		links.WhatsAppURL, EscapeHTML(links.WhatsAppNumber),
		links.TikTokURL, EscapeHTML(links.TikTokUsername),
	)

	return EmailMessage{
		To:      to,
		ToName:  name,
		Subject: subject,
		Body:    text,
		HTML:    html,
	}
}
