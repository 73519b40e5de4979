package mailparse

import (
	"html"
	"regexp"
	"strings"

	"imap-telegram-forwarder/internal/models"
)

var (
	headBlock  = regexp.MustCompile(`(?is)<head.*?>.*?</head>`)
	styleBlock = regexp.MustCompile(`(?is)<style.*?>.*?</style>`)
	lineBreak  = regexp.MustCompile(`(?i)<br\s*/?>`)
	paraEnd    = regexp.MustCompile(`(?i)</p>`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)
)

// HTMLToText is a lossy, regex based reduction of HTML to readable text.
// Scripts, comments and malformed markup may leak through.
func HTMLToText(content string) string {
	text := headBlock.ReplaceAllString(content, "")
	text = styleBlock.ReplaceAllString(text, "")
	text = lineBreak.ReplaceAllString(text, "\n")
	text = paraEnd.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}

// ExtractText returns the readable text of a body. Multipart bodies prefer
// their text/plain parts and fall back to the reduced text/html parts.
func ExtractText(body models.Body) string {
	switch body.Kind {
	case models.BodyMultipart:
		var plain, htmlChunks []string
		for _, p := range body.Parts {
			if p.Attachment {
				continue
			}
			switch p.ContentType {
			case "text/plain":
				plain = append(plain, p.Text)
			case "text/html":
				htmlChunks = append(htmlChunks, p.Text)
			}
		}
		if len(plain) > 0 {
			return strings.TrimSpace(strings.Join(plain, "\n"))
		}
		if len(htmlChunks) > 0 {
			return strings.TrimSpace(HTMLToText(strings.Join(htmlChunks, "\n")))
		}
		return ""
	case models.BodyHTML:
		return strings.TrimSpace(HTMLToText(singleText(body)))
	default:
		return strings.TrimSpace(singleText(body))
	}
}

func singleText(body models.Body) string {
	if len(body.Parts) == 0 {
		return ""
	}
	return body.Parts[0].Text
}
