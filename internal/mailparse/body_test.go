package mailparse

import (
	"strings"
	"testing"

	"imap-telegram-forwarder/internal/models"
)

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<p>Hello <b>world</b></p><br>Bye")

	if strings.ContainsAny(got, "<>") {
		t.Errorf("Expected no markup left, got %q", got)
	}

	lines := strings.Split(got, "\n")
	var hello, bye = -1, -1
	for i, line := range lines {
		if strings.Contains(line, "Hello world") {
			hello = i
		}
		if strings.Contains(line, "Bye") {
			bye = i
		}
	}
	if hello < 0 || bye < 0 || hello == bye {
		t.Errorf("Expected 'Hello world' and 'Bye' on separate lines, got %q", got)
	}
}

func TestHTMLToText_DropsHeadAndStyle(t *testing.T) {
	input := `<html><head><title>T</title></head><body><style>p{color:red}</style><p>Fish &amp; chips</p></body></html>`

	got := strings.TrimSpace(HTMLToText(input))
	if got != "Fish & chips" {
		t.Errorf("HTMLToText() = %q, want %q", got, "Fish & chips")
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		body     models.Body
		expected string
	}{
		{
			name: "Plain",
			body: models.Body{Kind: models.BodyPlain, Parts: []models.Part{
				{ContentType: "text/plain", Text: "  Hi there \n"},
			}},
			expected: "Hi there",
		},
		{
			name: "HTML",
			body: models.Body{Kind: models.BodyHTML, Parts: []models.Part{
				{ContentType: "text/html", Text: "<div>Hi<br/>there</div>"},
			}},
			expected: "Hi\nthere",
		},
		{
			name: "Multipart plain parts joined",
			body: models.Body{Kind: models.BodyMultipart, Parts: []models.Part{
				{ContentType: "text/plain", Text: "one"},
				{ContentType: "text/html", Text: "<p>ignored</p>"},
				{ContentType: "text/plain", Text: "two"},
			}},
			expected: "one\ntwo",
		},
		{
			name: "Multipart HTML fallback",
			body: models.Body{Kind: models.BodyMultipart, Parts: []models.Part{
				{ContentType: "text/html", Text: "<p>A</p>"},
				{ContentType: "text/html", Text: "<p>B</p>"},
			}},
			expected: "A\n\nB",
		},
		{
			name: "Multipart attachments ignored",
			body: models.Body{Kind: models.BodyMultipart, Parts: []models.Part{
				{ContentType: "text/plain", Text: "secret", Attachment: true},
				{ContentType: "image/png", Text: "\x89PNG"},
			}},
			expected: "",
		},
		{
			name:     "Other without parts",
			body:     models.Body{Kind: models.BodyOther},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractText(tt.body)
			if got != tt.expected {
				t.Errorf("ExtractText() = %q, want %q", got, tt.expected)
			}
		})
	}
}
