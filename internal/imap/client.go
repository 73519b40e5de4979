package imap

import (
	"fmt"
	"io"
	"sync"
	"time"

	"imap-telegram-forwarder/internal/models"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

type StandardClient struct {
	mu      sync.Mutex
	client  *client.Client
	timeout time.Duration
}

// NewStandardClient creates a new StandardClient with a default timeout of 30 seconds for IMAP operations
func NewStandardClient() *StandardClient {
	return &StandardClient{
		timeout: 30 * time.Second,
	}
}

// Connect establishes a secure connection to the IMAP server using TLS. It returns an error if the connection fails.
func (c *StandardClient) Connect(server string) error {
	cl, err := client.DialTLS(server, nil)
	if err != nil {
		return fmt.Errorf("IMAP connection error: %w", err)
	}
	cl.Timeout = c.timeout

	c.mu.Lock()
	c.client = cl
	c.mu.Unlock()
	return nil
}

func (c *StandardClient) conn() (*client.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil, fmt.Errorf("not connected")
	}
	return c.client, nil
}

// Login authenticates the user with the IMAP server using the provided username and password.
func (c *StandardClient) Login(user, password string) error {
	cl, err := c.conn()
	if err != nil {
		return err
	}
	return cl.Login(user, password)
}

// SelectMailbox selects the specified mailbox (e.g., "INBOX") read-write, so flags can be stored.
func (c *StandardClient) SelectMailbox(name string) error {
	cl, err := c.conn()
	if err != nil {
		return err
	}
	_, err = cl.Select(name, false)
	return err
}

// ListUnseenUIDs returns the UIDs of all messages without the \Seen flag, in server order.
func (c *StandardClient) ListUnseenUIDs() ([]uint32, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := cl.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("error searching for unseen emails: %w", err)
	}

	return uids, nil
}

// FetchMessage retrieves the full raw message for the UID. BODY.PEEK is used so fetching does not set \Seen.
func (c *StandardClient) FetchMessage(uid uint32) (*models.RawMessage, error) {
	cl, err := c.conn()
	if err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchInternalDate, imap.FetchUid}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)

	go func() {
		done <- cl.UidFetch(seqSet, items, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		msg = m
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("error fetching message UID %d: %w", uid, err)
	}

	if msg == nil {
		return nil, fmt.Errorf("no message retrieved for UID %d", uid)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("no body returned for UID %d", uid)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("error reading body of UID %d: %w", uid, err)
	}

	return &models.RawMessage{
		UID:          uid,
		Data:         data,
		InternalDate: msg.InternalDate,
	}, nil
}

// MarkSeen marks the email with the specified UID as seen (read) on the IMAP server.
func (c *StandardClient) MarkSeen(uid uint32) error {
	cl, err := c.conn()
	if err != nil {
		return err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}

	return cl.UidStore(seqSet, item, flags, nil)
}

// Close closes the selected mailbox and logs out. If there is no active connection, it simply returns nil.
func (c *StandardClient) Close() error {
	c.mu.Lock()
	cl := c.client
	c.client = nil
	c.mu.Unlock()

	if cl == nil {
		return nil
	}
	if cl.Mailbox() != nil {
		_ = cl.Close()
	}
	return cl.Logout()
}

// Terminate closes the connection immediately, interrupting any command in flight.
func (c *StandardClient) Terminate() error {
	c.mu.Lock()
	cl := c.client
	c.mu.Unlock()

	if cl == nil {
		return nil
	}
	return cl.Terminate()
}
