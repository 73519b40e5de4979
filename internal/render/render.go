// Package render turns a parsed email into the text of a Telegram notification.
package render

import (
	"fmt"
	"html"
	"strings"

	"imap-telegram-forwarder/internal/mailparse"
	"imap-telegram-forwarder/internal/models"
)

const (
	PreviewMaxLines = 10
	PreviewMaxRunes = 600
	Ellipsis        = "…"

	NoTextBody    = "(no text body)"
	NoSubject     = "(no subject)"
	UnknownSender = "(unknown sender)"

	dateFormat = "2006-01-02 15:04:05 -07:00"
)

// Render builds the notification text: bold subject, sender, date, a blank line and the body preview.
// Every field is escaped for Telegram's HTML parse mode.
func Render(email *models.Email) string {
	subject := email.Subject
	if subject == "" {
		subject = NoSubject
	}

	sender := UnknownSender
	if email.From != "" {
		sender = mailparse.SenderAddress(email.From)
	}

	date := email.DateHeader
	if !email.Date.IsZero() {
		date = email.Date.Format(dateFormat)
	}

	return fmt.Sprintf("<b>%s</b>\nFrom: %s\nDate: %s\n\n%s",
		Escape(subject),
		Escape(sender),
		Escape(date),
		Escape(Preview(mailparse.ExtractText(email.Body))),
	)
}

// Preview keeps the first lines of body and caps them at PreviewMaxRunes, appending an ellipsis when cut
func Preview(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return NoTextBody
	}

	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")

	lines := strings.Split(body, "\n")
	if len(lines) > PreviewMaxLines {
		lines = lines[:PreviewMaxLines]
	}
	preview := strings.Join(lines, "\n")

	runes := []rune(preview)
	if len(runes) > PreviewMaxRunes {
		preview = string(runes[:PreviewMaxRunes]) + Ellipsis
	}
	return preview
}

// Escape makes text safe to embed in a message sent with parse_mode=HTML
func Escape(s string) string {
	return html.EscapeString(s)
}
