package imap

import "imap-telegram-forwarder/internal/models"

// Client is one IMAP session. A new Client is used for every poll cycle.
type Client interface {
	Connect(server string) error
	Login(user, password string) error
	SelectMailbox(name string) error
	ListUnseenUIDs() ([]uint32, error)
	FetchMessage(uid uint32) (*models.RawMessage, error)
	MarkSeen(uid uint32) error
	Close() error
	// Terminate drops the connection without logging out. Safe to call from another goroutine.
	Terminate() error
}
