// Package scanner runs one poll cycle against the mailbox: list unseen
// messages, forward each one, and mark the forwarded ones seen.
package scanner

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	"imap-telegram-forwarder/internal/emailprocessor"
	imapclient "imap-telegram-forwarder/internal/imap"
	"imap-telegram-forwarder/internal/logging"
	"imap-telegram-forwarder/internal/models"
	"imap-telegram-forwarder/internal/telegram"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// ClientFactory opens a fresh, unconnected IMAP session
type ClientFactory func() imapclient.Client

type Scanner struct {
	cfg       models.ForwarderConfig
	newClient ClientFactory
	notifier  telegram.Notifier

	connectFailures atomic.Int32
}

// New creates a Scanner bound to one configuration snapshot
func New(cfg models.ForwarderConfig, newClient ClientFactory, notifier telegram.Notifier) *Scanner {
	return &Scanner{
		cfg:       cfg,
		newClient: newClient,
		notifier:  notifier,
	}
}

// NewForConfig wires the production IMAP client and Telegram notifier
func NewForConfig(cfg models.ForwarderConfig) *Scanner {
	notifier := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID)
	return New(cfg, func() imapclient.Client { return imapclient.NewStandardClient() }, notifier)
}

// Scan connects to the IMAP server, retrieves unseen emails, and processes them in listing order.
// Login and search failures abort the cycle; failures of a single message never do.
func (s *Scanner) Scan(ctx context.Context) (report models.ScanReport, err error) {
	client := s.newClient()
	server := net.JoinHostPort(s.cfg.ImapHost, strconv.Itoa(s.cfg.ImapPort))

	// Connect
	if err := client.Connect(server); err != nil {
		failures := s.connectFailures.Add(1)
		logging.Log.Warnf("IMAP connection to %s failed (%d in a row)", server, failures)
		return report, errors.Wrapf(err, "connect to %s", server)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logging.Log.Debugf("IMAP logout error: %v", cerr)
		}
	}()

	// Reset failure count on successful connection
	s.connectFailures.Store(0)

	// Hard cancellation drops the connection so a blocked command returns
	stop := context.AfterFunc(ctx, func() {
		_ = client.Terminate()
	})
	defer stop()

	// Login
	if err := client.Login(s.cfg.EmailUser, s.cfg.EmailPass); err != nil {
		return report, errors.Mark(errors.Wrapf(err, "login as %s", s.cfg.EmailUser), models.ErrLoginFailed)
	}

	// Select mailbox
	if err := client.SelectMailbox(s.cfg.Mailbox); err != nil {
		return report, errors.Mark(errors.Wrapf(err, "select %s", s.cfg.Mailbox), models.ErrSearchFailed)
	}

	uids, err := client.ListUnseenUIDs()
	if err != nil {
		return report, errors.Mark(err, models.ErrSearchFailed)
	}

	report.Found = len(uids)
	if len(uids) == 0 {
		logging.Log.Debug("No new messages")
		return report, nil
	}

	logging.Log.Infof("Found %d unseen messages", len(uids))

	processor := emailprocessor.NewProcessor(client, s.notifier)

	for _, uid := range uids {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		outcome := s.processOne(ctx, processor, uid)
		report.Record(outcome)
	}

	logging.Log.WithFields(logrus.Fields{
		"found":     report.Found,
		"delivered": report.Delivered,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	}).Info("Scan cycle complete")

	return report, nil
}

// processOne contains every failure of a single message, panics included
func (s *Scanner) processOne(ctx context.Context, processor *emailprocessor.Processor, uid uint32) (outcome models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.Log.WithField("uid", uid).Errorf("Panic while handling UID %d: %v", uid, r)
			outcome = models.OutcomeFailed
		}
	}()

	outcome, err := processor.ProcessEmail(ctx, uid)
	if err != nil {
		logging.Log.WithField("uid", uid).Errorf("Error processing email UID %d: %v", uid, err)
	}
	return outcome
}

// ConnectFailures returns the number of consecutive failed connection attempts
func (s *Scanner) ConnectFailures() int32 {
	return s.connectFailures.Load()
}

// String describes the scanner for logs without exposing credentials
func (s *Scanner) String() string {
	return fmt.Sprintf("%s@%s:%d/%s", s.cfg.EmailUser, s.cfg.ImapHost, s.cfg.ImapPort, s.cfg.Mailbox)
}
