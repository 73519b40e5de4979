package mailparse

import (
	"bytes"
	"io"
	"mime"
	netmail "net/mail"
	"regexp"
	"strings"
	"time"

	"imap-telegram-forwarder/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

func init() {
	// Legacy single-byte charsets still common in mail from older clients
	charset.RegisterEncoding("windows-1251", charmap.Windows1251)
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
	charset.RegisterEncoding("koi8-r", charmap.KOI8R)
}

var (
	bracketAddress = regexp.MustCompile(`<([^<>]+)>`)

	dateLayouts = []string{
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04 -0700",
		"2 Jan 2006 15:04 -0700",
	}
)

// Parse turns raw message bytes into a normalized Email. When the body cannot be fully read the Email is still returned, together with an error marked ErrParseFailed.
func Parse(raw *models.RawMessage) (*models.Email, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw.Data))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, errors.Mark(errors.Wrapf(err, "read headers of UID %d", raw.UID), models.ErrParseFailed)
	}
	defer func() {
		_ = mr.Close()
	}()

	header := mr.Header

	email := &models.Email{
		UID:        raw.UID,
		TraceID:    uuid.New().String(),
		From:       decodeOrRaw(header.Get("From")),
		Subject:    decodeOrRaw(header.Get("Subject")),
		DateHeader: validUTF8(strings.TrimSpace(header.Get("Date"))),
	}

	if date, err := ParseDate(email.DateHeader); err == nil {
		email.Date = date
	}

	mediaType, _, err := header.ContentType()
	if err != nil || mediaType == "" {
		mediaType = "text/plain"
	}

	parts, bodyErr := readParts(mr)
	email.Body = models.Body{Parts: parts}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		email.Body.Kind = models.BodyMultipart
	case mediaType == "text/plain":
		email.Body.Kind = models.BodyPlain
	case mediaType == "text/html":
		email.Body.Kind = models.BodyHTML
	default:
		email.Body.Kind = models.BodyOther
	}

	if bodyErr != nil {
		return email, errors.Mark(errors.Wrapf(bodyErr, "read body of UID %d", raw.UID), models.ErrParseFailed)
	}
	return email, nil
}

// readParts walks every leaf part of the message. Parts read before an error are kept.
func readParts(mr *mail.Reader) ([]models.Part, error) {
	var parts []models.Part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return parts, nil
		}
		if err != nil {
			if message.IsUnknownCharset(err) && p == nil {
				continue
			}
			if !message.IsUnknownCharset(err) {
				return parts, err
			}
		}

		part := models.Part{ContentType: "text/plain"}
		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			if ct, _, err := h.ContentType(); err == nil && ct != "" {
				part.ContentType = ct
			}
		case *mail.AttachmentHeader:
			part.Attachment = true
			if ct, _, err := h.ContentType(); err == nil && ct != "" {
				part.ContentType = ct
			}
		}

		body, err := io.ReadAll(p.Body)
		if err != nil {
			return parts, err
		}
		// undeclared or unknown charsets leave the raw 8-bit bytes in place
		part.Text = validUTF8(string(body))
		parts = append(parts, part)
	}
}

// DecodeHeader decodes MIME-encoded headers (e.g., "=?UTF-8?B?...?=") to plain text
func DecodeHeader(encoded string) (string, error) {
	decoder := &mime.WordDecoder{CharsetReader: charset.Reader}
	decoded, err := decoder.DecodeHeader(encoded)
	if err != nil {
		return "", err
	}
	return decoded, nil
}

func decodeOrRaw(value string) string {
	decoded, err := DecodeHeader(value)
	if err != nil {
		return validUTF8(strings.TrimSpace(value))
	}
	return validUTF8(strings.TrimSpace(decoded))
}

func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// SenderAddress returns the address between angle brackets of a From header ("Name" <user@host>), or the whole header when there is none
func SenderAddress(from string) string {
	if m := bracketAddress.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(from)
}

// ParseDate parses a Date header such as "Tue, 1 Jul 2025 10:00:00 +0200 (CEST)". The trailing comment is dropped before parsing.
func ParseDate(value string) (time.Time, error) {
	trimmed := value
	if i := strings.Index(trimmed, "("); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.Join(strings.Fields(trimmed), " ")
	if trimmed == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}

	t, err := netmail.ParseDate(trimmed)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", value)
	}
	return t, nil
}
