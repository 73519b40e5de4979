package emailprocessor

import (
	"context"
	"time"

	imapclient "imap-telegram-forwarder/internal/imap"
	"imap-telegram-forwarder/internal/logging"
	"imap-telegram-forwarder/internal/mailparse"
	"imap-telegram-forwarder/internal/models"
	"imap-telegram-forwarder/internal/render"
	"imap-telegram-forwarder/internal/telegram"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// MaxMessageAge is how old a message may be, by its Date header, and still be forwarded. Older unseen mail is marked seen silently.
const MaxMessageAge = 5 * 24 * time.Hour

type Processor struct {
	imapClient imapclient.Client
	notifier   telegram.Notifier
	now        func() time.Time
}

// NewProcessor creates a new Processor instance with the provided IMAP session and notifier
func NewProcessor(imapClient imapclient.Client, notifier telegram.Notifier) *Processor {
	return &Processor{
		imapClient: imapClient,
		notifier:   notifier,
		now:        time.Now,
	}
}

// ProcessEmail orchestrates the complete email processing workflow:
// fetch → parse → validate age → render → deliver → mark as seen.
// A message is marked seen only when it was delivered or is too old; every other failure leaves it for the next cycle.
func (p *Processor) ProcessEmail(ctx context.Context, uid uint32) (models.Outcome, error) {
	// Fetch message from IMAP
	raw, err := p.imapClient.FetchMessage(uid)
	if err != nil {
		return models.OutcomeFailed, errors.Mark(err, models.ErrFetchFailed)
	}

	// Parse email to normalized structure; a broken body still gets forwarded with what could be read
	email, err := mailparse.Parse(raw)
	if email == nil {
		logging.Log.WithField("trace_id", "unknown").Warnf("Error parsing email UID %d, forwarding placeholder: %v", uid, err)
		email = &models.Email{UID: uid}
	} else if err != nil {
		logging.Log.WithField("trace_id", email.TraceID).Warnf("Partial parse of email UID %d: %v", uid, err)
	}

	locallog := logging.Log.WithFields(logrus.Fields{"trace_id": email.TraceID, "uid": uid})

	// Validate email age (5 days window)
	if !IsFresh(email.Date, p.now()) {
		locallog.Infof("Message UID %d is older than %v (date: %v), marking seen without forwarding", uid, MaxMessageAge, email.Date)
		if err := p.imapClient.MarkSeen(uid); err != nil {
			return models.OutcomeFailed, errors.Wrapf(err, "mark stale message UID %d as seen", uid)
		}
		return models.OutcomeSkipped, nil
	}

	text := render.Render(email)

	if err := p.notifier.Deliver(ctx, text); err != nil {
		return models.OutcomeFailed, errors.Wrapf(err, "deliver message UID %d", uid)
	}

	// Mark as seen only after a successful delivery
	if err := p.imapClient.MarkSeen(uid); err != nil {
		locallog.Errorf("Error marking message UID %d as seen, it will be forwarded again: %v", uid, err)
		return models.OutcomeDelivered, errors.Wrapf(err, "mark message UID %d as seen", uid)
	}

	locallog.Infof("Forwarded UID %d to Telegram and marked as seen", uid)
	return models.OutcomeDelivered, nil
}

// IsFresh reports whether a message dated date should still be forwarded at now. A zero date (missing or unparseable header) is always fresh.
func IsFresh(date, now time.Time) bool {
	if date.IsZero() {
		return true
	}
	return now.Sub(date) <= MaxMessageAge
}
