package imaptest

import (
	"fmt"
	"strings"
	"time"
)

// PlainMessage builds a minimal text/plain RFC 5322 message
func PlainMessage(from, subject string, date time.Time, body string) []byte {
	lines := []string{
		"From: " + from,
		"To: inbox@example.com",
		"Subject: " + subject,
		"Date: " + date.Format(time.RFC1123Z),
		fmt.Sprintf("Message-ID: <%d@example.com>", date.UnixNano()),
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}
	return []byte(strings.Join(lines, "\r\n"))
}
