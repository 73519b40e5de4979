package models

import "time"

// BodyKind tags which shape of body a parsed message carries
type BodyKind int

const (
	BodyPlain BodyKind = iota
	BodyHTML
	BodyMultipart
	BodyOther
)

// Part is one leaf of a message body
type Part struct {
	ContentType string
	Text        string
	Attachment  bool
}

// Body is the decoded body of a message. Single-part bodies carry exactly one part.
type Body struct {
	Kind  BodyKind
	Parts []Part
}

// RawMessage is a message as fetched from the mailbox
type RawMessage struct {
	UID          uint32
	Data         []byte
	InternalDate time.Time
}

// Email represents a normalized parsed email message
type Email struct {
	UID        uint32
	TraceID    string
	Subject    string
	From       string
	DateHeader string
	Date       time.Time // zero when the Date header is missing or unparseable
	Body       Body
}
