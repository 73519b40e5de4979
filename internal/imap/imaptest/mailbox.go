// Package imaptest provides an in-memory mailbox implementing imap.Client for tests.
package imaptest

import (
	"fmt"
	"sync"
	"time"

	imapclient "imap-telegram-forwarder/internal/imap"
	"imap-telegram-forwarder/internal/models"
)

type message struct {
	uid  uint32
	data []byte
	seen bool
}

// Mailbox is shared by every session it hands out. Error fields inject failures.
type Mailbox struct {
	mu       sync.Mutex
	messages []*message

	ConnectErr error
	LoginErr   error
	SearchErr  error
	FetchErr   map[uint32]error
	MarkErr    map[uint32]error

	Sessions    int
	Closed      int
	Terminated  int
	Fetched     []uint32
	MarkedSeen  []uint32
	LastServer  string
	LastMailbox string
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		FetchErr: map[uint32]error{},
		MarkErr:  map[uint32]error{},
	}
}

// Add appends an unseen message
func (m *Mailbox) Add(uid uint32, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, &message{uid: uid, data: data})
}

// Unseen returns the UIDs still lacking \Seen
func (m *Mailbox) Unseen() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var uids []uint32
	for _, msg := range m.messages {
		if !msg.seen {
			uids = append(uids, msg.uid)
		}
	}
	return uids
}

// FetchCount returns how many fetch calls were made
func (m *Mailbox) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Fetched)
}

// SessionCount returns how many sessions were opened
func (m *Mailbox) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sessions
}

// ClosedCount returns how many sessions were closed
func (m *Mailbox) ClosedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

// NewClient opens a new session on the mailbox
func (m *Mailbox) NewClient() imapclient.Client {
	return &session{mailbox: m}
}

type session struct {
	mailbox   *Mailbox
	connected bool
	loggedIn  bool
}

func (s *session) Connect(server string) error {
	m := s.mailbox
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastServer = server
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.Sessions++
	s.connected = true
	return nil
}

func (s *session) Login(user, password string) error {
	m := s.mailbox
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.connected {
		return fmt.Errorf("not connected")
	}
	if m.LoginErr != nil {
		return m.LoginErr
	}
	s.loggedIn = true
	return nil
}

func (s *session) SelectMailbox(name string) error {
	m := s.mailbox
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.loggedIn {
		return fmt.Errorf("not authenticated")
	}
	m.LastMailbox = name
	return nil
}

func (s *session) ListUnseenUIDs() ([]uint32, error) {
	m := s.mailbox
	m.mu.Lock()
	err := m.SearchErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.Unseen(), nil
}

func (s *session) FetchMessage(uid uint32) (*models.RawMessage, error) {
	m := s.mailbox
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetched = append(m.Fetched, uid)
	if err := m.FetchErr[uid]; err != nil {
		return nil, err
	}
	for _, msg := range m.messages {
		if msg.uid == uid {
			return &models.RawMessage{UID: uid, Data: msg.data, InternalDate: time.Now()}, nil
		}
	}
	return nil, fmt.Errorf("no message retrieved for UID %d", uid)
}

func (s *session) MarkSeen(uid uint32) error {
	m := s.mailbox
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.MarkErr[uid]; err != nil {
		return err
	}
	for _, msg := range m.messages {
		if msg.uid == uid {
			msg.seen = true
			m.MarkedSeen = append(m.MarkedSeen, uid)
			return nil
		}
	}
	return fmt.Errorf("no message with UID %d", uid)
}

func (s *session) Close() error {
	m := s.mailbox
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.connected {
		m.Closed++
		s.connected = false
	}
	return nil
}

func (s *session) Terminate() error {
	m := s.mailbox
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Terminated++
	return nil
}
